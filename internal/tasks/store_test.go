package tasks

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestCreateSubtaskSetsParentID(t *testing.T) {
	s := newTestStore(t)
	parent, err := s.Create("parent", "do the whole thing", PriorityNormal, Source{Channel: "c", User: "u"})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child, err := s.CreateSubtask("child", "do part of it", PriorityNormal, parent.Source, parent.ID)
	if err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	if child.ParentID != parent.ID {
		t.Fatalf("expected ParentID %q, got %q", parent.ID, child.ParentID)
	}
	subtasks := s.ListSubtasks(parent.ID)
	if len(subtasks) != 1 || subtasks[0].ID != child.ID {
		t.Fatalf("expected ListSubtasks to return the child, got %+v", subtasks)
	}
}

func TestRestartPausesRunningTasks(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	task, err := s.Create("t", "d", PriorityNormal, Source{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.UpdateStatus(task.ID, StatusRunning, nil, "", ""); err != nil {
		t.Fatalf("update status: %v", err)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	got, ok := reopened.Get(task.ID)
	if !ok {
		t.Fatal("expected task to survive restart")
	}
	if got.Status != StatusPaused {
		t.Fatalf("expected a running task to recover as paused, got %s", got.Status)
	}
}

func TestPendingOrderingByPriorityThenCreation(t *testing.T) {
	s := newTestStore(t)
	low, _ := s.Create("low", "d", PriorityLow, Source{})
	time.Sleep(time.Millisecond)
	critical, _ := s.Create("critical", "d", PriorityCritical, Source{})
	time.Sleep(time.Millisecond)
	_, _ = s.Create("normal", "d", PriorityNormal, Source{})

	next := s.GetNextPending()
	if next == nil || next.ID != critical.ID {
		t.Fatalf("expected critical task first, got %+v", next)
	}
	_, _ = s.UpdateStatus(critical.ID, StatusRunning, nil, "", "")
	next = s.GetNextPending()
	if next == nil || next.Priority != PriorityNormal {
		t.Fatalf("expected normal priority next, got %+v", next)
	}
	_, _ = s.UpdateStatus(next.ID, StatusRunning, nil, "", "")
	next = s.GetNextPending()
	if next == nil || next.ID != low.ID {
		t.Fatalf("expected low priority last, got %+v", next)
	}
}
