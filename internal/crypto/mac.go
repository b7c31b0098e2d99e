package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

// MACSize is the fixed width of an HMAC-SHA256 output, the size M3 and M4
// use to split a MAC off the end of a payload with no length prefix.
const MACSize = sha256.Size

// MAC computes HMAC-SHA256 over the ordered concatenation of fragments
// under key, matching the reference's compute_mac(key, fragments...).
func MAC(key []byte, fragments ...[]byte) []byte {
	h := hmac.New(sha256.New, key)
	for _, f := range fragments {
		h.Write(f)
	}
	return h.Sum(nil)
}

// VerifyMAC reports whether mac matches MAC(key, fragments...), comparing
// in constant time.
func VerifyMAC(key []byte, mac []byte, fragments ...[]byte) bool {
	return hmac.Equal(mac, MAC(key, fragments...))
}
