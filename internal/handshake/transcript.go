package handshake

import "secure-session/internal/container"

// fragments never splices two logically distinct fields into one slice:
// every signature, MAC, or KDF input is built as an ordered list of
// exact byte ranges, never a hand-concatenated buffer.
type fragments [][]byte

// ecdhContainerBytes encodes an ECDH public key the way it travels on the
// wire: wrapped in its own EC_PUB_KEY_PREF-tagged container.
func ecdhContainerBytes(raw []byte) []byte {
	return container.New(container.TagECPub, raw).Encode()
}

// signatureFragments builds the four-field ordered input used by both the
// M2 and M3 signatures: (producer's own ecdh, producer's peer ecdh,
// producer's own id, producer's peer id). A verifier reconstructs the
// identical byte sequence by supplying (peer ecdh, own ecdh, peer id, own
// id) from its own point of view, since its peer is the producer.
func signatureFragments(ownECDH, peerECDH []byte, ownID, peerID string) fragments {
	return fragments{ownECDH, peerECDH, []byte(ownID), []byte(peerID)}
}

// sessionIDFragments builds the fixed client-first ordering required for
// session id derivation, the same four values regardless of which side
// computes them.
func sessionIDFragments(clientECDH, serverECDH []byte, clientID, serverID string) fragments {
	return fragments{clientECDH, serverECDH, []byte(clientID), []byte(serverID)}
}
