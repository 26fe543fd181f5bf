package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HeaderName is the request header carrying the webhook signature
const HeaderName = "X-Hub-Signature-256"

const prefix = "sha256="

// Sign returns the signature header value for payload
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return prefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a webhook signature header against the raw request body.
// An empty secret means verification is disabled and every request is accepted.
func Verify(secret string, payload []byte, header string) bool {
	if secret == "" {
		return true
	}
	if header == "" {
		return false
	}

	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(header))
}
