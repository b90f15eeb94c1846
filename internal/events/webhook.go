package events

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// MatchWebhook finds the enabled webhook trigger whose configured path
// equals path. The gateway's webhook listener calls this per request.
func (r *Registry) MatchWebhook(path string) (*Trigger, bool) {
	for _, t := range r.All() {
		if t.Type != KindWebhook || !t.Enabled {
			continue
		}
		if p, _ := t.Config["path"].(string); p == path {
			return t, true
		}
	}
	return nil, false
}

// VerifyWebhookSecret checks a request's shared-secret header against a
// webhook trigger's configured secret, if one is configured. No configured
// secret means the check passes. sharedSecretHeader is compared directly;
// hubSignature256Header (GitHub-style "sha256=<hex hmac>") is verified
// against the raw request body.
func VerifyWebhookSecret(t *Trigger, body []byte, sharedSecretHeader, hubSignature256Header string) error {
	secret, _ := t.Config["secret"].(string)
	if secret == "" {
		return nil
	}
	if sharedSecretHeader != "" {
		if sharedSecretHeader != secret {
			return fmt.Errorf("webhook secret mismatch")
		}
		return nil
	}
	if hubSignature256Header != "" {
		want, ok := strings.CutPrefix(hubSignature256Header, "sha256=")
		if !ok {
			return fmt.Errorf("malformed X-Hub-Signature-256 header")
		}
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		got := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(got), []byte(want)) {
			return fmt.Errorf("webhook signature mismatch")
		}
		return nil
	}
	return fmt.Errorf("webhook secret required but no signature header present")
}
