package builtin

import (
	"context"
	"testing"

	"github.com/kodokalabs/tetsuo.26/internal/tasks"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func TestGetTaskReturnsCreatedTask(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	created, err := deps.Tasks.Create("ship the release", "cut v1.2", tasks.PriorityNormal, tasks.Source{Channel: "cli", User: "alice"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "get_task",
		Input: []byte(`{"id":"` + created.ID + `"}`),
	})
	if err != nil || res.IsError {
		t.Fatalf("get_task failed: err=%v result=%+v", err, res)
	}
	if !contains(res.Content, created.ID) || !contains(res.Content, "ship the release") {
		t.Fatalf("expected fetched task in response, got %q", res.Content)
	}
}

func TestGetTaskUnknownIDErrors(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "get_task",
		Input: []byte(`{"id":"does-not-exist"}`),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected unknown task id to error")
	}
}

func TestUpdateTaskStatusTransitionsAndReportsProgress(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	created, err := deps.Tasks.Create("index the repo", "", tasks.PriorityNormal, tasks.Source{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "update_task_status",
		Input: []byte(`{"id":"` + created.ID + `","status":"running","progress":50}`),
	})
	if err != nil || res.IsError {
		t.Fatalf("update_task_status failed: err=%v result=%+v", err, res)
	}
	if !contains(res.Content, "running") || !contains(res.Content, "50%") {
		t.Fatalf("expected status/progress in response, got %q", res.Content)
	}
}

func TestListTasksFiltersByStatus(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	pending, err := deps.Tasks.Create("pending one", "", tasks.PriorityNormal, tasks.Source{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	running, err := deps.Tasks.Create("running one", "", tasks.PriorityNormal, tasks.Source{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := deps.Tasks.UpdateStatus(running.ID, tasks.StatusRunning, nil, "", ""); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "list_tasks",
		Input: []byte(`{"status":"pending"}`),
	})
	if err != nil || res.IsError {
		t.Fatalf("list_tasks failed: err=%v result=%+v", err, res)
	}
	if !contains(res.Content, pending.ID) || contains(res.Content, running.ID) {
		t.Fatalf("expected only the pending task listed, got %q", res.Content)
	}
}

func TestCancelTaskSetsCancelledStatus(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	created, err := deps.Tasks.Create("abandon this", "", tasks.PriorityNormal, tasks.Source{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "cancel_task",
		Input: []byte(`{"id":"` + created.ID + `"}`),
	})
	if err != nil || res.IsError {
		t.Fatalf("cancel_task failed: err=%v result=%+v", err, res)
	}

	got, ok := deps.Tasks.Get(created.ID)
	if !ok || got.Status != tasks.StatusCancelled {
		t.Fatalf("expected task to be cancelled, got %+v ok=%v", got, ok)
	}
}
