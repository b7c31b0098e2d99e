package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"secure-session/internal/sserr"
)

// signingPublicSize is the width of an uncompressed SEC1 P-256 point:
// 0x04 prefix plus two 32-byte coordinates.
const signingPublicSize = 1 + 32 + 32

// GenerateSigningKey returns a fresh long-term P-256 ECDSA signing key
// pair.
func GenerateSigningKey() (*ecdsa.PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, sserr.Crypto("ecdsa generate", err)
	}
	return priv, nil
}

// EncodeSigningPublic returns pub as an uncompressed SEC1 point, mirroring
// the wire form the ECDH keys use.
func EncodeSigningPublic(pub *ecdsa.PublicKey) []byte {
	out := make([]byte, signingPublicSize)
	out[0] = 0x04
	pub.X.FillBytes(out[1:33])
	pub.Y.FillBytes(out[33:65])
	return out
}

// DecodeSigningPublic parses an uncompressed SEC1 P-256 point into an
// ecdsa.PublicKey. It borrows crypto/ecdh's point validation (curve
// membership, correct length) rather than repeating it by hand.
func DecodeSigningPublic(b []byte) (*ecdsa.PublicKey, error) {
	pub, err := DecodeECDHPublic(b)
	if err != nil {
		return nil, sserr.Crypto("ecdsa decode public key", err)
	}
	raw := pub.Bytes()
	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(raw[1:33]),
		Y:     new(big.Int).SetBytes(raw[33:65]),
	}, nil
}

// Sign hashes fragments in order (never splicing two logically distinct
// fields into one byte slice) and signs the digest with priv.
func Sign(priv *ecdsa.PrivateKey, fragments ...[]byte) ([]byte, error) {
	digest := hashFragments(fragments)
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, sserr.Crypto("ecdsa sign", err)
	}
	return sig, nil
}

// Verify checks sig against the hash of fragments under pub.
func Verify(pub *ecdsa.PublicKey, sig []byte, fragments ...[]byte) bool {
	digest := hashFragments(fragments)
	return ecdsa.VerifyASN1(pub, digest[:], sig)
}

func hashFragments(fragments [][]byte) [32]byte {
	h := sha256.New()
	for _, f := range fragments {
		h.Write(f)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
