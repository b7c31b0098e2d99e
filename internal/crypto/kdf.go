package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"secure-session/internal/sserr"
)

// KDF derives the session id and master key with a single HMAC-SHA256
// pass over label ‖ context, using secret as the HMAC key (secret may be
// nil, as it is for the session id, which is derived from public
// transcript material alone).
//
// This is deliberately not full HKDF (Extract-then-Expand): session_id
// and master_key must come out byte-identical on both sides of the
// handshake from the same transcript inputs, and an Extract step would
// change every derived value. golang.org/x/crypto/hkdf is used below in
// DirectionKey instead, where no such one-HMAC-pass constraint applies.
func KDF(secret []byte, label string, context ...[]byte) [32]byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(label))
	for _, c := range context {
		h.Write(c)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// DirectionKey derives a per-direction record-layer key from the session
// master key and a role label ("client" or "server"). Unlike the session
// id / master key ladder, this derivation isn't pinned to a specific
// reference construction, so it's free to use full HKDF-SHA256.
func DirectionKey(masterKey [32]byte, role string) ([32]byte, error) {
	r := hkdf.New(sha256.New, masterKey[:], nil, []byte("Themis secure session "+role+" key"))
	var out [32]byte
	if _, err := io.ReadFull(r, out[:]); err != nil {
		return out, sserr.Crypto("hkdf direction key", err)
	}
	return out, nil
}
