package events

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// checklistItemPattern matches a markdown checkbox list item: "- [ ] text"
// or "- [x] text".
var checklistItemPattern = regexp.MustCompile(`^- \[( |x|X)\] (.+)$`)

// ChecklistItem is one line of HEARTBEAT.md.
type ChecklistItem struct {
	Done bool
	Text string
}

// ReadChecklist parses the heartbeat checklist file. A missing file is not
// an error; it is treated as an empty checklist.
func ReadChecklist(path string) ([]ChecklistItem, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open heartbeat checklist: %w", err)
	}
	defer f.Close()

	var items []ChecklistItem
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := checklistItemPattern.FindStringSubmatch(strings.TrimRight(scanner.Text(), "\r"))
		if m == nil {
			continue
		}
		items = append(items, ChecklistItem{
			Done: strings.EqualFold(m[1], "x"),
			Text: m[2],
		})
	}
	return items, scanner.Err()
}

// WriteChecklist renders items back to path as markdown checkboxes, for the
// edit_heartbeat tool.
func WriteChecklist(path string, items []ChecklistItem) error {
	var b strings.Builder
	for _, it := range items {
		mark := " "
		if it.Done {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", mark, it.Text)
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// Heartbeat periodically loads the checklist and, if any items are
// unchecked, publishes a heartbeat-fired event for the session loop to
// consume in heartbeat mode.
type Heartbeat struct {
	Path     string
	Interval time.Duration
	Channel  string
	OnFire   func(Fired)

	stop chan struct{}
}

// Start launches the heartbeat's background ticker. Call Stop to end it.
func (h *Heartbeat) Start() {
	h.stop = make(chan struct{})
	go h.run()
}

// Stop ends the heartbeat ticker.
func (h *Heartbeat) Stop() {
	if h.stop != nil {
		close(h.stop)
	}
}

func (h *Heartbeat) run() {
	interval := h.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.tick()
		}
	}
}

func (h *Heartbeat) tick() {
	items, err := ReadChecklist(h.Path)
	if err != nil || h.OnFire == nil {
		return
	}
	var pending []string
	for _, it := range items {
		if !it.Done {
			pending = append(pending, it.Text)
		}
	}
	if len(pending) == 0 {
		return
	}
	h.OnFire(Fired{
		Action: Action{
			Kind:    ActionMessage,
			Content: strings.Join(pending, "\n"),
			Channel: h.Channel,
		},
		Payload: map[string]any{"pending": pending},
	})
}
