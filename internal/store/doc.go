// Package store provides file-based persistence for secure-session's
// long-term identity material.
//
// It keeps a single passphrase-protected keystore file holding the local
// peer's id and long-term ECDSA signing key, encrypted at rest with the
// envelope in internal/crypto (Argon2id + ChaCha20-Poly1305). Writes go
// through a temp-file-then-rename so a crash never leaves a half-written
// keystore on disk.
package store
