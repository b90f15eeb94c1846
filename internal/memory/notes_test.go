package memory

import "testing"

func TestRememberAndRecallByBodyKeyword(t *testing.T) {
	s, err := NewNoteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewNoteStore() error = %v", err)
	}
	if _, err := s.Remember("the deploy key lives in 1Password", []string{"ops"}); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}
	if _, err := s.Remember("coffee machine needs descaling", []string{"office"}); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}

	matches, err := s.Recall("deploy", 0)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(matches) != 1 || matches[0].Body != "the deploy key lives in 1Password" {
		t.Fatalf("expected one body match, got %+v", matches)
	}
}

func TestRecallMatchesByTag(t *testing.T) {
	s, err := NewNoteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewNoteStore() error = %v", err)
	}
	if _, err := s.Remember("quarterly numbers are in the shared drive", []string{"finance", "quarterly"}); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}

	matches, err := s.Recall("finance", 0)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected tag match, got %+v", matches)
	}
}

func TestRecallRespectsLimit(t *testing.T) {
	s, err := NewNoteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewNoteStore() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := s.Remember("recurring reminder about standup", []string{"standup"}); err != nil {
			t.Fatalf("Remember() error = %v", err)
		}
	}
	matches, err := s.Recall("standup", 2)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected limit of 2 matches, got %d", len(matches))
	}
}

func TestAllReturnsEveryStoredNote(t *testing.T) {
	s, err := NewNoteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewNoteStore() error = %v", err)
	}
	if _, err := s.Remember("note one", nil); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}
	if _, err := s.Remember("note two", nil); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}
	all, err := s.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(all))
	}
}

func TestRecallNoMatchesReturnsEmpty(t *testing.T) {
	s, err := NewNoteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewNoteStore() error = %v", err)
	}
	if _, err := s.Remember("something unrelated", nil); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}
	matches, err := s.Recall("nonexistent", 0)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %+v", matches)
	}
}
