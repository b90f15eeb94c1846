package builtin

import (
	"context"
	"testing"

	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func TestClipboardWriteDisabledByDefault(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "clipboard_write",
		Input: []byte(`{"text":"hello"}`),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.IsError || !contains(res.Content, "disabled") {
		t.Fatalf("expected system control to be disabled by default, got %+v", res)
	}
}

func TestOpenApplicationReportsNoBackendWhenEnabled(t *testing.T) {
	deps := newTestDeps(t)
	if _, _, err := deps.Settings.Update(map[string]any{
		"toolPermissions": map[string]any{"systemControl": true},
	}, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	reg := newTestRegistry(t, deps)

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "open_application",
		Input: []byte(`{"name":"Calculator"}`),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.IsError || !contains(res.Content, "no application-launch backend") {
		t.Fatalf("expected no-backend error, got %+v", res)
	}
}
