package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Note is one markdown-frontmatter memory entry, the unit the `remember` and
// `recall` tools operate on. The full persistent memory store (a
// hierarchical, cross-referenced knowledge base) is out of scope; this is
// the flat keyword-searchable subset the tools need.
type Note struct {
	ID        string    `json:"id" yaml:"id"`
	Tags      []string  `json:"tags" yaml:"tags"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Body      string    `json:"body" yaml:"-"`
}

// NoteStore persists Notes as individual markdown files with a YAML
// frontmatter block under dir.
type NoteStore struct {
	dir string
	now func() time.Time
}

// NewNoteStore opens dir (typically "<workspace>/memory/notes").
func NewNoteStore(dir string) (*NoteStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create notes directory: %w", err)
	}
	return &NoteStore{dir: dir, now: time.Now}, nil
}

// Remember writes a new note with body and tags, returning its id.
func (s *NoteStore) Remember(body string, tags []string) (*Note, error) {
	n := &Note{
		ID:        uuid.NewString(),
		Tags:      tags,
		CreatedAt: s.now(),
		Body:      body,
	}
	front, err := yaml.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal note frontmatter: %w", err)
	}
	content := "---\n" + string(front) + "---\n" + body + "\n"
	path := filepath.Join(s.dir, n.ID+".md")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return nil, fmt.Errorf("write note %s: %w", n.ID, err)
	}
	return n, nil
}

// Recall keyword-searches note bodies and tags, returning matches newest
// first, capped at limit.
func (s *NoteStore) Recall(keyword string, limit int) ([]*Note, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(keyword)
	var out []*Note
	for _, n := range all {
		if strings.Contains(strings.ToLower(n.Body), needle) || containsTag(n.Tags, needle) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// All loads every note in the store, used by Recall and the /memory count
// endpoint.
func (s *NoteStore) All() ([]*Note, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan notes directory: %w", err)
	}
	var out []*Note
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".md") {
			continue
		}
		n, err := s.load(de.Name())
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *NoteStore) load(filename string) (*Note, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(data), "---\n", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("malformed note %s: missing frontmatter", filename)
	}
	var n Note
	if err := yaml.Unmarshal([]byte(parts[1]), &n); err != nil {
		return nil, fmt.Errorf("decode note %s: %w", filename, err)
	}
	n.Body = strings.TrimSuffix(parts[2], "\n")
	return &n, nil
}

func containsTag(tags []string, needle string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}
