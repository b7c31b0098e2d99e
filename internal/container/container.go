// Package container implements the tagged, checksummed TLV frame used for
// every message on the wire: handshake messages, the identity sub-message
// nested inside them, and application records once the session is
// Established.
package container

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"secure-session/internal/sserr"
)

// TagSize is the width of the ASCII tag identifying a message class.
const TagSize = 4

// HeaderSize is the width of the tag+size+checksum prefix that precedes
// every container's payload.
const HeaderSize = 12

const headerSize = HeaderSize

// Tag identifies a container's message class.
type Tag [TagSize]byte

func (t Tag) String() string { return string(t[:]) }

var (
	// TagProto frames the outer handshake/record message.
	TagProto = Tag{'T', 'S', 'S', 'P'}
	// TagID frames the inner peer-identity sub-message carried in M1/M2.
	TagID = Tag{'T', 'S', 'S', 'I'}
	// TagECPub frames an uncompressed-SEC1 elliptic-curve public key
	// (ephemeral ECDH or long-term signing) as an EC_PUB_KEY_PREF blob.
	TagECPub = Tag{'E', 'C', 'P', 'B'}
)

// Container is a parsed tag+size+checksum+payload frame.
type Container struct {
	Tag     Tag
	Payload []byte
}

// New wraps payload under tag.
func New(tag Tag, payload []byte) Container {
	return Container{Tag: tag, Payload: payload}
}

// Encode serializes c as tag(4) ‖ size(4, big-endian, total incl. header)
// ‖ checksum(4) ‖ payload.
func (c Container) Encode() []byte {
	out := make([]byte, headerSize+len(c.Payload))
	copy(out[0:4], c.Tag[:])
	binary.BigEndian.PutUint32(out[4:8], uint32(headerSize+len(c.Payload)))
	binary.BigEndian.PutUint32(out[8:12], crc32.ChecksumIEEE(c.Payload))
	copy(out[headerSize:], c.Payload)
	return out
}

// ParseAny validates the 12-byte header (length, declared size, checksum)
// without constraining the tag, and returns the parsed container plus
// whatever bytes of buf followed it (so containers can be read back to
// back out of a larger payload, as M1–M3 require).
func ParseAny(buf []byte) (Container, []byte, error) {
	if len(buf) < headerSize {
		return Container{}, nil, fmt.Errorf("%w: buffer shorter than container header (%d < %d)", sserr.ErrInvalidParameter, len(buf), headerSize)
	}
	var tag Tag
	copy(tag[:], buf[0:4])
	size := binary.BigEndian.Uint32(buf[4:8])
	checksum := binary.BigEndian.Uint32(buf[8:12])

	if size < headerSize {
		return Container{}, nil, fmt.Errorf("%w: declared size %d smaller than header", sserr.ErrInvalidParameter, size)
	}
	if uint64(size) > uint64(len(buf)) {
		return Container{}, nil, fmt.Errorf("%w: declared size %d exceeds buffer length %d", sserr.ErrInvalidParameter, size, len(buf))
	}
	payload := buf[headerSize:size]
	if crc32.ChecksumIEEE(payload) != checksum {
		return Container{}, nil, fmt.Errorf("%w: checksum mismatch", sserr.ErrInvalidParameter)
	}
	return Container{Tag: tag, Payload: payload}, buf[size:], nil
}

// Parse behaves like ParseAny but additionally requires the container's tag
// to equal want.
func Parse(buf []byte, want Tag) (Container, []byte, error) {
	c, rest, err := ParseAny(buf)
	if err != nil {
		return Container{}, nil, err
	}
	if c.Tag != want {
		return Container{}, nil, fmt.Errorf("%w: tag %q, want %q", sserr.ErrInvalidParameter, c.Tag, want)
	}
	return c, rest, nil
}

// HasTagPrefix reports whether buf begins with a container carrying the
// given tag, without consuming or validating the rest of the frame. It
// can recognize an EC_PUB_KEY_PREF-tagged blob before a full Parse; the
// handshake itself checks key containers with Parse.
func HasTagPrefix(buf []byte, tag Tag) bool {
	return len(buf) >= TagSize && Tag(([4]byte)(buf[:4])) == tag
}
