package square

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Verifier checks webhook signatures. Square signs the notification URL
// concatenated with the raw request body.
type Verifier struct {
	key             []byte
	notificationURL string
}

func NewVerifier(signatureKey, notificationURL string) *Verifier {
	return &Verifier{key: []byte(signatureKey), notificationURL: notificationURL}
}

// Enabled reports whether a signature key is configured.
func (v *Verifier) Enabled() bool {
	return len(v.key) > 0
}

func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(v.notificationURL))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (v *Verifier) Verify(signature string, body []byte) bool {
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(v.Sign(body)))
}
