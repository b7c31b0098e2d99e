package store

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	sscrypto "secure-session/internal/crypto"
)

// ErrNoIdentity is returned by IdentityStore.Load when no keystore file
// exists yet at the configured path.
var ErrNoIdentity = errors.New("store: no identity keystore at this path")

// identityKeystoreFile is the on-disk JSON envelope around a PKCS#8-encoded
// ECDSA private key.
type identityKeystoreFile struct {
	ID         string `json:"id"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// IdentityStore persists the local peer's long-term id and signing key in
// a single passphrase-protected file.
type IdentityStore struct {
	path string
}

// NewIdentityStore returns a store backed by the file at path.
func NewIdentityStore(path string) *IdentityStore {
	return &IdentityStore{path: path}
}

// Save encrypts priv under passphrase and writes it to the store's path,
// atomically.
func (s *IdentityStore) Save(passphrase, id string, priv *ecdsa.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return fmt.Errorf("store: marshal signing key: %w", err)
	}
	defer sscrypto.Wipe(der)

	salt, err := sscrypto.NewSalt()
	if err != nil {
		return err
	}
	nonce, ciphertext, err := sscrypto.EncryptSecret(passphrase, salt, der)
	if err != nil {
		return err
	}

	return writeJSON(s.path, identityKeystoreFile{
		ID:         id,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, 0o600)
}

// Load decrypts and returns the id and signing key stored at the store's
// path. It returns ErrNoIdentity if the file does not exist.
func (s *IdentityStore) Load(passphrase string) (id string, priv *ecdsa.PrivateKey, err error) {
	raw, err := readFile(s.path)
	if err != nil {
		return "", nil, fmt.Errorf("store: read identity keystore: %w", err)
	}
	if raw == nil {
		return "", nil, ErrNoIdentity
	}

	var f identityKeystoreFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", nil, fmt.Errorf("store: parse identity keystore: %w", err)
	}

	der, err := sscrypto.DecryptSecret(passphrase, f.Salt, f.Nonce, f.Ciphertext)
	if err != nil {
		return "", nil, err
	}
	defer sscrypto.Wipe(der)

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return "", nil, fmt.Errorf("store: parse signing key: %w", err)
	}
	ecKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return "", nil, errors.New("store: keystore does not hold an ECDSA key")
	}
	return f.ID, ecKey, nil
}

// Exists reports whether a keystore file is present at the store's path.
func (s *IdentityStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
