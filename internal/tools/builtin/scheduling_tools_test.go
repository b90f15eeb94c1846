package builtin

import (
	"context"
	"os"
	"testing"

	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func TestScheduleCronCreatesCronTrigger(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	res, err := reg.Execute(context.Background(), tools.Call{
		Name: "schedule_cron",
		Input: []byte(`{"name":"daily digest","expression":"0 9 * * *","message":"good morning",
			"channel":"ops"}`),
	})
	if err != nil || res.IsError {
		t.Fatalf("schedule_cron failed: err=%v result=%+v", err, res)
	}

	all := deps.Triggers.All()
	if len(all) != 1 || all[0].Name != "daily digest" {
		t.Fatalf("expected one cron trigger named daily digest, got %+v", all)
	}
}

func TestCancelCronRemovesTrigger(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	created, err := deps.Triggers.Create("cron", "reminder", map[string]any{"expression": "* * * * *"}, eventsMessageAction())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "cancel_cron",
		Input: []byte(`{"id":"` + created.ID + `"}`),
	})
	if err != nil || res.IsError {
		t.Fatalf("cancel_cron failed: err=%v result=%+v", err, res)
	}
	if _, ok := deps.Triggers.Get(created.ID); ok {
		t.Fatalf("expected cron trigger to be removed")
	}
}

func TestEditHeartbeatWritesChecklist(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "edit_heartbeat",
		Input: []byte(`{"items":[{"text":"check disk space","done":false},{"text":"rotate logs","done":true}]}`),
	})
	if err != nil || res.IsError {
		t.Fatalf("edit_heartbeat failed: err=%v result=%+v", err, res)
	}

	data, err := os.ReadFile(deps.HeartbeatPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !contains(string(data), "check disk space") || !contains(string(data), "rotate logs") {
		t.Fatalf("expected checklist items written, got %q", string(data))
	}
}
