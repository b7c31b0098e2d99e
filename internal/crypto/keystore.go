package crypto

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"secure-session/internal/sserr"
)

// KeyBytes is the width of a derived key-encryption key.
const KeyBytes = chacha20poly1305.KeySize

// SaltBytes is the width of the Argon2id salt stored alongside a secret.
const SaltBytes = 16

// DeriveKEK derives a key-encryption key from a passphrase and salt using
// Argon2id, the password-hashing primitive used for at-rest secrets.
func DeriveKEK(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, KeyBytes)
}

// NewSalt returns a fresh random salt of SaltBytes length.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, sserr.Crypto("generate salt", err)
	}
	return salt, nil
}

// EncryptSecret seals plaintext under a KEK derived from passphrase and
// salt, protecting the long-term signing private key at rest.
func EncryptSecret(passphrase string, salt, plaintext []byte) (nonce, ciphertext []byte, err error) {
	if len(salt) != SaltBytes {
		return nil, nil, errors.New("crypto: invalid salt size")
	}
	kek := DeriveKEK(passphrase, salt)
	defer Wipe(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, nil, sserr.Crypto("keystore aead", err)
	}
	nonce = make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, sserr.Crypto("generate nonce", err)
	}
	return nonce, aead.Seal(nil, nonce, plaintext, salt), nil
}

// DecryptSecret reverses EncryptSecret.
func DecryptSecret(passphrase string, salt, nonce, ciphertext []byte) ([]byte, error) {
	if len(salt) != SaltBytes {
		return nil, errors.New("crypto: invalid salt size")
	}
	kek := DeriveKEK(passphrase, salt)
	defer Wipe(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, sserr.Crypto("keystore aead", err)
	}
	pt, err := aead.Open(nil, nonce, ciphertext, salt)
	if err != nil {
		return nil, sserr.Crypto("keystore open (wrong passphrase or corrupted keystore)", err)
	}
	return pt, nil
}
