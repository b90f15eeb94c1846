package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DangerousSetting names a (key, forbidden value) pair that requires a
// one-time confirmation token before the settings mutator will apply it,
// along with the human-readable reason shown to the operator.
type DangerousSetting struct {
	Key    string
	Value  string
	Reason string
}

// DangerousSettings enumerates the confirmation-gated mutations. Values are
// compared case-sensitively against the patch's string representation.
var DangerousSettings = []DangerousSetting{
	{Key: "security.sandboxEnabled", Value: "false", Reason: "disables the sandbox boundary around tool execution"},
	{Key: "security.ssrfProtection", Value: "false", Reason: "allows tools to fetch internal/cloud-metadata addresses"},
	{Key: "security.injectionGuard", Value: "false", Reason: "stops framing untrusted content as data"},
	{Key: "security.gatewayAuth", Value: "false", Reason: "disables bearer-token authentication on the control plane"},
	{Key: "security.auditLog", Value: "false", Reason: "stops recording tool calls to the audit log"},
	{Key: "security.allowLocalhost", Value: "true", Reason: "permits SSRF-validated fetches to localhost"},
	{Key: "autonomyLevel", Value: "high", Reason: "removes approval prompts for all tool calls"},
}

// confirmBucketWidth resolves Open Question 3: the source's 4-digit
// millisecond truncation is replaced with an explicit 5-minute bucket, wide
// enough that an operator has time to read the confirm token and retry the
// request, narrow enough that a stale token cannot be replayed long after
// the settings page that displayed it was closed.
const confirmBucketWidth = 5 * time.Minute

// ConfirmToken computes the deterministic HMAC-SHA256 confirmation token for
// a (key, value) pair at the current coarse time bucket. The secret is
// typically the gateway bearer token, so only a caller who already knows the
// gateway token (or was shown the token by /admin/api/settings/confirm) can
// produce a valid confirmation.
func ConfirmToken(secret, key, value string, at time.Time) string {
	bucket := at.UTC().Truncate(confirmBucketWidth).Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s|%d", key, value, bucket)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyConfirmToken checks token against the current and immediately
// preceding bucket, so a confirmation requested just before a bucket
// boundary remains valid for one full bucket width after being issued.
func VerifyConfirmToken(secret, key, value, token string, now time.Time) bool {
	for _, at := range []time.Time{now, now.Add(-confirmBucketWidth)} {
		if ConstantTimeEqual(ConfirmToken(secret, key, value, at), token) {
			return true
		}
	}
	return false
}

// RequiredConfirmations inspects a settings patch and returns the
// DangerousSettings entries it would trigger, keyed by dotted path. The
// mutator applies everything else in the patch and reports these as the
// confirmations still required.
func RequiredConfirmations(patch map[string]string) []DangerousSetting {
	var out []DangerousSetting
	for _, ds := range DangerousSettings {
		if v, ok := patch[ds.Key]; ok && v == ds.Value {
			out = append(out, ds)
		}
	}
	return out
}
