package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader is the request header carrying the body signature.
const SignatureHeader = "X-Hub-Signature-256"

// Sign computes the lowercase hex HMAC-SHA256 of body keyed by secret.
func Sign(body, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the provided signature against the HMAC of the
// raw body. The vendor's "sha256=" header prefix is tolerated. Comparison
// is constant time. Must run before the body is parsed or trusted.
func VerifySignature(body []byte, signature string, secret []byte) error {
	provided := strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	provided = strings.ToLower(provided)
	if provided == "" {
		return ErrInvalidSignature
	}
	expected := Sign(body, secret)
	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return ErrInvalidSignature
	}
	return nil
}
