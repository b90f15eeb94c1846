package events

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestMatchWebhookFindsEnabledTriggerByPath(t *testing.T) {
	r, err := NewRegistry(t.TempDir())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	tr, err := r.Create(KindWebhook, "github", map[string]any{"path": "/hooks/github"}, Action{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, ok := r.MatchWebhook("/hooks/github")
	if !ok || got.ID != tr.ID {
		t.Fatalf("expected to match trigger %s, got %+v ok=%v", tr.ID, got, ok)
	}
}

func TestMatchWebhookIgnoresDisabledTrigger(t *testing.T) {
	r, err := NewRegistry(t.TempDir())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	tr, err := r.Create(KindWebhook, "github", map[string]any{"path": "/hooks/github"}, Action{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := r.Toggle(tr.ID); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	if _, ok := r.MatchWebhook("/hooks/github"); ok {
		t.Fatalf("expected disabled trigger not to match")
	}
}

func TestVerifyWebhookSecretNoSecretConfiguredPasses(t *testing.T) {
	tr := &Trigger{Config: map[string]any{}}
	if err := VerifyWebhookSecret(tr, []byte("body"), "", ""); err != nil {
		t.Fatalf("expected no error when no secret configured, got %v", err)
	}
}

func TestVerifyWebhookSecretSharedHeaderMatch(t *testing.T) {
	tr := &Trigger{Config: map[string]any{"secret": "s3cr3t"}}
	if err := VerifyWebhookSecret(tr, nil, "s3cr3t", ""); err != nil {
		t.Fatalf("expected matching shared secret to pass, got %v", err)
	}
}

func TestVerifyWebhookSecretSharedHeaderMismatch(t *testing.T) {
	tr := &Trigger{Config: map[string]any{"secret": "s3cr3t"}}
	if err := VerifyWebhookSecret(tr, nil, "wrong", ""); err == nil {
		t.Fatalf("expected mismatched shared secret to fail")
	}
}

func TestVerifyWebhookSecretHubSignatureMatch(t *testing.T) {
	secret := "s3cr3t"
	body := []byte(`{"event":"push"}`)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	tr := &Trigger{Config: map[string]any{"secret": secret}}
	if err := VerifyWebhookSecret(tr, body, "", sig); err != nil {
		t.Fatalf("expected valid HMAC signature to pass, got %v", err)
	}
}

func TestVerifyWebhookSecretHubSignatureMismatch(t *testing.T) {
	tr := &Trigger{Config: map[string]any{"secret": "s3cr3t"}}
	if err := VerifyWebhookSecret(tr, []byte("body"), "", "sha256=deadbeef"); err == nil {
		t.Fatalf("expected invalid HMAC signature to fail")
	}
}

func TestVerifyWebhookSecretRequiredButMissing(t *testing.T) {
	tr := &Trigger{Config: map[string]any{"secret": "s3cr3t"}}
	if err := VerifyWebhookSecret(tr, []byte("body"), "", ""); err == nil {
		t.Fatalf("expected error when secret configured but no header present")
	}
}
