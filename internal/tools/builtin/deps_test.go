package builtin

import (
	"context"
	"testing"

	"github.com/kodokalabs/tetsuo.26/internal/approval"
	"github.com/kodokalabs/tetsuo.26/internal/costs"
	"github.com/kodokalabs/tetsuo.26/internal/events"
	"github.com/kodokalabs/tetsuo.26/internal/memory"
	"github.com/kodokalabs/tetsuo.26/internal/sandbox"
	"github.com/kodokalabs/tetsuo.26/internal/security"
	"github.com/kodokalabs/tetsuo.26/internal/settings"
	"github.com/kodokalabs/tetsuo.26/internal/tasks"
)

// newTestDeps builds a fully wired Deps rooted at a fresh temp directory, the
// way the daemon wires builtin.RegisterAll at start-up, so each tool handler
// test can exercise its real collaborators instead of mocks.
func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	root := t.TempDir()

	jail, err := security.NewPathJail(root)
	if err != nil {
		t.Fatalf("NewPathJail() error = %v", err)
	}
	taskStore, err := tasks.NewStore(root + "/tasks")
	if err != nil {
		t.Fatalf("tasks.NewStore() error = %v", err)
	}
	approvals, err := approval.NewBroker(root + "/approvals")
	if err != nil {
		t.Fatalf("approval.NewBroker() error = %v", err)
	}
	costManager, err := costs.NewManager(root + "/costs")
	if err != nil {
		t.Fatalf("costs.NewManager() error = %v", err)
	}
	threads, err := memory.NewStore(root+"/memory", nil)
	if err != nil {
		t.Fatalf("memory.NewStore() error = %v", err)
	}
	notes, err := memory.NewNoteStore(root + "/notes")
	if err != nil {
		t.Fatalf("memory.NewNoteStore() error = %v", err)
	}
	triggers, err := events.NewRegistry(root + "/events")
	if err != nil {
		t.Fatalf("events.NewRegistry() error = %v", err)
	}
	settingsStore, err := settings.NewStore(root+"/settings", func() string { return "test-secret" })
	if err != nil {
		t.Fatalf("settings.NewStore() error = %v", err)
	}
	// Tests exercise run_shell's direct-exec path by default since a docker
	// binary is not assumed to be available; the *WhenEnabled tests in
	// shell_test.go and run_code_tool_test.go flip this back on with a fake
	// SandboxExecutor.
	confirmToken := settingsStore.ConfirmToken("security.sandboxEnabled", "false")
	if _, _, err := settingsStore.Update(map[string]any{
		"security": map[string]any{"sandboxEnabled": false},
	}, map[string]string{"security.sandboxEnabled": confirmToken}); err != nil {
		t.Fatalf("disable sandboxing: %v", err)
	}

	return &Deps{
		Jail:          jail,
		Tasks:         taskStore,
		Approvals:     approvals,
		Costs:         costManager,
		Threads:       threads,
		Notes:         notes,
		Triggers:      triggers,
		Settings:      settingsStore,
		HeartbeatPath: root + "/HEARTBEAT.md",
	}
}

// fakeSandbox is an in-memory SandboxExecutor stand-in so sandboxed-path
// tests don't require a real docker binary.
type fakeSandbox struct {
	calls  []sandbox.ExecuteParams
	result *sandbox.ExecuteResult
	err    error
}

func (f *fakeSandbox) Execute(_ context.Context, params sandbox.ExecuteParams) (*sandbox.ExecuteResult, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &sandbox.ExecuteResult{Stdout: "ok", ExitCode: 0}, nil
}
