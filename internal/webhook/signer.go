package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carries the request body signature expected by the
// automation engine.
const SignatureHeader = "X-Webhook-Signature"

// Signer computes HMAC-SHA256 digests over outgoing JSON envelopes.
type Signer struct {
	secret []byte
}

// NewSigner returns a signer for the shared secret, or nil when the secret is
// empty so callers can skip signing entirely.
func NewSigner(secret string) *Signer {
	if secret == "" {
		return nil
	}
	return &Signer{secret: []byte(secret)}
}

// Sign returns the hex-encoded HMAC-SHA256 of body.
func (s *Signer) Sign(body []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches body using a constant-time
// comparison.
func (s *Signer) Verify(body []byte, signature string) bool {
	if s == nil {
		return false
	}
	return hmac.Equal([]byte(s.Sign(body)), []byte(signature))
}
