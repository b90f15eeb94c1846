package events

import (
	"path/filepath"
	"testing"
)

func TestReadChecklistParsesCheckedAndUnchecked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "HEARTBEAT.md")
	if err := WriteChecklist(path, []ChecklistItem{
		{Done: true, Text: "water the plants"},
		{Done: false, Text: "send the invoice"},
	}); err != nil {
		t.Fatalf("WriteChecklist() error = %v", err)
	}

	items, err := ReadChecklist(path)
	if err != nil {
		t.Fatalf("ReadChecklist() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if !items[0].Done || items[0].Text != "water the plants" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Done || items[1].Text != "send the invoice" {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
}

func TestReadChecklistMissingFileReturnsEmpty(t *testing.T) {
	items, err := ReadChecklist(filepath.Join(t.TempDir(), "missing.md"))
	if err != nil {
		t.Fatalf("ReadChecklist() error = %v", err)
	}
	if items != nil {
		t.Fatalf("expected nil items for missing file, got %+v", items)
	}
}

func TestHeartbeatTickFiresOnlyWithPendingItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "HEARTBEAT.md")
	if err := WriteChecklist(path, []ChecklistItem{{Done: false, Text: "follow up with client"}}); err != nil {
		t.Fatalf("WriteChecklist() error = %v", err)
	}

	var fired *Fired
	h := &Heartbeat{Path: path, Channel: "console", OnFire: func(f Fired) { fired = &f }}
	h.tick()

	if fired == nil {
		t.Fatalf("expected OnFire to be invoked for pending items")
	}
	if fired.Action.Channel != "console" {
		t.Fatalf("expected action channel console, got %q", fired.Action.Channel)
	}
}

func TestHeartbeatTickSkipsWhenAllItemsDone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "HEARTBEAT.md")
	if err := WriteChecklist(path, []ChecklistItem{{Done: true, Text: "done already"}}); err != nil {
		t.Fatalf("WriteChecklist() error = %v", err)
	}

	called := false
	h := &Heartbeat{Path: path, OnFire: func(Fired) { called = true }}
	h.tick()

	if called {
		t.Fatalf("expected no fire when every item is done")
	}
}

func TestHeartbeatStartStopDoesNotPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "HEARTBEAT.md")
	h := &Heartbeat{Path: path, Interval: 0, OnFire: func(Fired) {}}
	h.Start()
	h.Stop()
}
