package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Summarizer condenses the oldest turns of an overflowing thread into a
// bounded text blob, folded onto Thread.Summary. The session loop supplies an
// LLM-backed implementation; tests and offline runs can use TruncatingSummarizer.
type Summarizer func(existing string, turns []Turn) string

// TruncatingSummarizer is the zero-dependency fallback: it appends a
// one-line digest per turn and hard-truncates at MaxSummaryChars.
func TruncatingSummarizer(existing string, turns []Turn) string {
	var b strings.Builder
	b.WriteString(existing)
	for _, t := range turns {
		line := t.Content
		if len(line) > 160 {
			line = line[:160] + "…"
		}
		fmt.Fprintf(&b, "\n[%s] %s", t.Role, line)
	}
	out := b.String()
	if len(out) > MaxSummaryChars {
		out = out[len(out)-MaxSummaryChars:]
	}
	return out
}

// Store is the process-global thread index: one JSON document per (channel,
// user) pair under dir, loaded lazily and cached in memory thereafter.
type Store struct {
	mu         sync.Mutex
	dir        string
	threads    map[string]*Thread
	now        func() time.Time
	summarizer Summarizer
}

// NewStore opens dir (typically "<workspace>/memory/threads") as the thread
// persistence root.
func NewStore(dir string, summarizer Summarizer) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create memory directory: %w", err)
	}
	if summarizer == nil {
		summarizer = TruncatingSummarizer
	}
	return &Store{
		dir:        dir,
		threads:    map[string]*Thread{},
		now:        time.Now,
		summarizer: summarizer,
	}, nil
}

// Load returns the thread for (channel, user), creating an empty one on
// first access, but does not persist it until a turn is appended.
func (s *Store) Load(channel, user string) (*Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(channel, user)
}

func (s *Store) loadLocked(channel, user string) (*Thread, error) {
	k := key(channel, user)
	if t, ok := s.threads[k]; ok {
		cp := *t
		return &cp, nil
	}

	data, err := os.ReadFile(s.filePath(channel, user))
	if err != nil {
		if os.IsNotExist(err) {
			now := s.now()
			t := &Thread{Channel: channel, User: user, CreatedAt: now, UpdatedAt: now}
			s.threads[k] = t
			cp := *t
			return &cp, nil
		}
		return nil, fmt.Errorf("read thread %s: %w", k, err)
	}
	var t Thread
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode thread %s: %w", k, err)
	}
	s.threads[k] = &t
	cp := t
	return &cp, nil
}

// AppendTurn appends turn to the (channel, user) thread and, once the soft
// cap is exceeded, folds the oldest half into the summary, per §3's
// invariant.
func (s *Store) AppendTurn(channel, user string, turn Turn) (*Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadLocked(channel, user); err != nil {
		return nil, err
	}
	t := s.threads[key(channel, user)]

	if turn.At.IsZero() {
		turn.At = s.now()
	}
	t.Turns = append(t.Turns, turn)
	t.UpdatedAt = s.now()

	if len(t.Turns) > SoftCap {
		overflow := len(t.Turns) - SoftCap/2
		t.Summary = s.summarizer(t.Summary, t.Turns[:overflow])
		t.Turns = t.Turns[overflow:]
	}

	if err := s.persistLocked(t); err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

// All returns every thread currently cached in memory, for the admin API's
// /memory listing and /status memory count. It does not scan disk for
// threads never loaded this process lifetime.
func (s *Store) All() []*Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Thread, 0, len(s.threads))
	for _, t := range s.threads {
		cp := *t
		out = append(out, &cp)
	}
	return out
}

// Reset clears a thread's history, keeping the row but emptying turns and
// summary.
func (s *Store) Reset(channel, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.loadLocked(channel, user); err != nil {
		return err
	}
	t := s.threads[key(channel, user)]
	t.Turns = nil
	t.Summary = ""
	t.UpdatedAt = s.now()
	return s.persistLocked(t)
}

func (s *Store) filePath(channel, user string) string {
	safe := strings.NewReplacer("/", "_", "\x00", "_").Replace(channel + "_" + user)
	return filepath.Join(s.dir, safe+".json")
}

func (s *Store) persistLocked(t *Thread) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal thread: %w", err)
	}
	path := s.filePath(t.Channel, t.User)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write thread: %w", err)
	}
	return os.Rename(tmp, path)
}
