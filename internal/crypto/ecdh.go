package crypto

import (
	"crypto/ecdh"
	"crypto/rand"

	"secure-session/internal/sserr"
)

// GenerateECDH returns a fresh ephemeral P-256 ECDH key pair, used once
// per session and discarded once the handshake establishes.
func GenerateECDH() (*ecdh.PrivateKey, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, sserr.Crypto("ecdh generate", err)
	}
	return priv, nil
}

// EncodeECDHPublic returns pub as an uncompressed SEC1 point (0x04 ‖ X ‖ Y),
// which is exactly what crypto/ecdh already produces for NIST curves.
func EncodeECDHPublic(pub *ecdh.PublicKey) []byte {
	return pub.Bytes()
}

// DecodeECDHPublic parses an uncompressed SEC1 P-256 point, rejecting
// points not on the curve.
func DecodeECDHPublic(b []byte) (*ecdh.PublicKey, error) {
	pub, err := ecdh.P256().NewPublicKey(b)
	if err != nil {
		return nil, sserr.Crypto("ecdh decode public key", err)
	}
	return pub, nil
}

// SharedSecret computes ECDH(priv, pub), the raw shared x-coordinate.
func SharedSecret(priv *ecdh.PrivateKey, pub *ecdh.PublicKey) ([]byte, error) {
	secret, err := priv.ECDH(pub)
	if err != nil {
		return nil, sserr.Crypto("ecdh", err)
	}
	return secret, nil
}
