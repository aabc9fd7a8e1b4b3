package platform

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// SignatureHeader is the webhook request header carrying the body signature.
const SignatureHeader = "X-Hub-Signature-256"

const signaturePrefix = "sha256="

// ValidateSignature verifies an inbound webhook body against its signature
// header. The signature is the base64 HMAC-SHA256 of the raw transmitted
// bytes: verification must run over exactly what was received, never a
// reparsed form. Comparison is constant time so a mismatch reveals nothing
// about the secret. Returns false on a missing header, a malformed prefix,
// or a mismatch; it never errors.
func ValidateSignature(secret string, body []byte, header string) bool {
	if header == "" || !strings.HasPrefix(strings.ToLower(header), signaturePrefix) {
		return false
	}
	provided := header[len(signaturePrefix):]

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
