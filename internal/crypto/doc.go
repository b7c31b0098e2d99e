// Package crypto wraps the primitives the secure session core depends on
// as an external collaborator.
//
// Contents
//
//   - P-256 ECDH ephemeral key agreement (GenerateECDH, SharedSecret, and
//     uncompressed SEC1 encode/decode)
//   - P-256 ECDSA long-term signing (GenerateSigningKey, Sign, Verify, and
//     the matching uncompressed SEC1 encode/decode)
//   - The session-id / master-key / MAC constructions the handshake layers
//     on top of those primitives (KDF, DirectionKey, MAC, VerifyMAC)
//   - A passphrase-protected keystore envelope for the long-term signing
//     key at rest (EncryptSecret, DecryptSecret)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Callers should treat returned secrets as sensitive and rely on Wipe when
// practical to reduce their lifetime in memory.
package crypto
