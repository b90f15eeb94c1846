package memory

import (
	"testing"
)

func TestLoadCreatesEmptyThreadOnFirstAccess(t *testing.T) {
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	thread, err := s.Load("console", "alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(thread.Turns) != 0 {
		t.Fatalf("expected empty thread, got %d turns", len(thread.Turns))
	}
}

func TestAppendTurnPersistsAcrossStoreInstances(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := s1.AppendTurn("console", "alice", Turn{Role: "user", Content: "hello"}); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}

	s2, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	thread, err := s2.Load("console", "alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(thread.Turns) != 1 || thread.Turns[0].Content != "hello" {
		t.Fatalf("expected persisted turn to reload, got %+v", thread.Turns)
	}
}

func TestAppendTurnFoldsOldestHalfOnceOverSoftCap(t *testing.T) {
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	var thread *Thread
	for i := 0; i < SoftCap+1; i++ {
		thread, err = s.AppendTurn("console", "alice", Turn{Role: "user", Content: "message"})
		if err != nil {
			t.Fatalf("AppendTurn() error = %v", err)
		}
	}
	if len(thread.Turns) >= SoftCap+1 {
		t.Fatalf("expected turns folded below soft cap, got %d", len(thread.Turns))
	}
	if thread.Summary == "" {
		t.Fatalf("expected folded turns to populate summary")
	}
}

func TestResetClearsTurnsAndSummary(t *testing.T) {
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := s.AppendTurn("console", "alice", Turn{Role: "user", Content: "hi"}); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}
	if err := s.Reset("console", "alice"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	thread, err := s.Load("console", "alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(thread.Turns) != 0 || thread.Summary != "" {
		t.Fatalf("expected thread cleared, got %+v", thread)
	}
}

func TestAllReturnsCachedThreads(t *testing.T) {
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := s.AppendTurn("console", "alice", Turn{Role: "user", Content: "hi"}); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}
	if _, err := s.AppendTurn("console", "bob", Turn{Role: "user", Content: "hi"}); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}
	if all := s.All(); len(all) != 2 {
		t.Fatalf("expected 2 cached threads, got %d", len(all))
	}
}

func TestTruncatingSummarizerBoundsLength(t *testing.T) {
	turns := make([]Turn, 0, 50)
	for i := 0; i < 50; i++ {
		turns = append(turns, Turn{Role: "user", Content: "a long message repeated many times over to grow the digest"})
	}
	summary := TruncatingSummarizer("", turns)
	if len(summary) > MaxSummaryChars {
		t.Fatalf("expected summary bounded at %d chars, got %d", MaxSummaryChars, len(summary))
	}
}
