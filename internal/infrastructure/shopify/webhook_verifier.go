package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"shopmirror/internal/domain"
)

// WebhookVerifier authenticates webhook deliveries using the shared secret
// configured on the remote platform.
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier creates a verifier for the given shared secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Verify computes an HMAC-SHA256 digest over the exact raw body bytes,
// base64-encodes it and compares it in constant time against the
// header-supplied signature.
func (v *WebhookVerifier) Verify(payload []byte, signature string) error {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrSignatureMismatch
	}
	return nil
}
