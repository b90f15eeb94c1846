package approval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Params describes a new approval request.
type Params struct {
	TaskID          string
	Description     string
	Action          ProposedAction
	Risk            Risk
	RiskExplanation string
	Channel         string
	User            string
	Timeout         time.Duration // zero means DefaultTimeout
}

// ErrAlreadyPending is returned when a second approval is requested for a
// task that already has one outstanding, enforcing "exactly one pending
// approval may block a given worker turn."
var ErrAlreadyPending = fmt.Errorf("approval: a request is already pending for this task")

type entry struct {
	req     *Request
	waiters []chan bool
	timer   *time.Timer
}

// Broker is the process-global approval index: it persists requests to
// disk, wakes waiting futures on resolution, and expires stale requests on a
// single-shot timer per request.
type Broker struct {
	mu      sync.Mutex
	dir     string
	pending map[string]*entry   // id -> entry, only while status == pending
	byTask  map[string]string   // taskID -> pending request id
	now     func() time.Time
	onEvent func(*Request)
}

// NewBroker opens dir (typically "<workspace>/approvals") as the broker's
// persistence root, creating it if needed.
func NewBroker(dir string) (*Broker, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create approvals directory: %w", err)
	}
	return &Broker{
		dir:     dir,
		pending: map[string]*entry{},
		byTask:  map[string]string{},
		now:     time.Now,
	}, nil
}

// OnEvent registers a callback invoked whenever a request is created or
// resolved, used to emit the approval-requested event onto the channel the
// request names.
func (b *Broker) OnEvent(fn func(*Request)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onEvent = fn
}

// Recover scans the persistence directory on startup, expiring any request
// whose ExpiresAt has already passed and re-arming a timer for any request
// still within its window.
func (b *Broker) Recover() error {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return fmt.Errorf("scan approvals directory: %w", err)
	}
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		req, err := b.load(de.Name())
		if err != nil {
			continue
		}
		if req.Status != StatusPending {
			continue
		}
		if !b.now().Before(req.ExpiresAt) {
			req.Status = StatusExpired
			_ = b.persist(req)
			continue
		}
		b.arm(req)
	}
	return nil
}

// RequestApproval creates and persists a new pending Request and returns a
// channel that resolves exactly once: true on approval, false on rejection
// or expiry.
func (b *Broker) RequestApproval(p Params) (*Request, <-chan bool, error) {
	b.mu.Lock()
	if existing, ok := b.byTask[p.TaskID]; ok && p.TaskID != "" {
		if e, ok := b.pending[existing]; ok {
			b.mu.Unlock()
			_ = e
			return nil, nil, ErrAlreadyPending
		}
	}
	b.mu.Unlock()

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	now := b.now()
	req := &Request{
		ID:              uuid.NewString(),
		TaskID:          p.TaskID,
		Description:     p.Description,
		Action:          p.Action,
		Risk:            p.Risk,
		RiskExplanation: p.RiskExplanation,
		Status:          StatusPending,
		Channel:         p.Channel,
		User:            p.User,
		CreatedAt:       now,
		ExpiresAt:       now.Add(timeout),
	}
	if err := b.persist(req); err != nil {
		return nil, nil, err
	}

	ch := b.arm(req)
	b.fireEvent(req)
	return req, ch, nil
}

// arm registers the request in the in-memory pending index and starts its
// expiry timer, returning the waiter channel for the caller who created it.
func (b *Broker) arm(req *Request) <-chan bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan bool, 1)
	e := &entry{req: req, waiters: []chan bool{ch}}
	remaining := req.ExpiresAt.Sub(b.now())
	if remaining < 0 {
		remaining = 0
	}
	e.timer = time.AfterFunc(remaining, func() { b.expire(req.ID) })
	b.pending[req.ID] = e
	if req.TaskID != "" {
		b.byTask[req.TaskID] = req.ID
	}
	return ch
}

// Await blocks until id resolves, for a worker resuming after restart that
// has no live channel from the original RequestApproval call. If the
// request has already resolved, it returns immediately.
func (b *Broker) Await(id string) (<-chan bool, error) {
	b.mu.Lock()
	if e, ok := b.pending[id]; ok {
		ch := make(chan bool, 1)
		e.waiters = append(e.waiters, ch)
		b.mu.Unlock()
		return ch, nil
	}
	b.mu.Unlock()

	req, err := b.Get(id)
	if err != nil {
		return nil, err
	}
	ch := make(chan bool, 1)
	ch <- req.Status == StatusApproved
	close(ch)
	return ch, nil
}

// Resolve sets a pending request to approved or rejected and wakes every
// waiting future exactly once. Resolving an already-terminal request is a
// no-op, matching the idempotent-resolution contract.
func (b *Broker) Resolve(id string, approved bool, resolver string) (*Request, error) {
	b.mu.Lock()
	e, ok := b.pending[id]
	if !ok {
		b.mu.Unlock()
		req, err := b.Get(id)
		if err != nil {
			return nil, err
		}
		return req, nil // already terminal; idempotent no-op
	}
	delete(b.pending, id)
	if e.req.TaskID != "" {
		delete(b.byTask, e.req.TaskID)
	}
	e.timer.Stop()
	b.mu.Unlock()

	now := b.now()
	e.req.Status = StatusRejected
	if approved {
		e.req.Status = StatusApproved
	}
	e.req.ResolvedAt = &now
	e.req.ResolvedBy = resolver
	if err := b.persist(e.req); err != nil {
		return nil, err
	}
	for _, w := range e.waiters {
		w <- approved
		close(w)
	}
	b.fireEvent(e.req)
	return e.req, nil
}

func (b *Broker) expire(id string) {
	b.mu.Lock()
	e, ok := b.pending[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.pending, id)
	if e.req.TaskID != "" {
		delete(b.byTask, e.req.TaskID)
	}
	b.mu.Unlock()

	now := b.now()
	e.req.Status = StatusExpired
	e.req.ResolvedAt = &now
	_ = b.persist(e.req)
	for _, w := range e.waiters {
		w <- false
		close(w)
	}
	b.fireEvent(e.req)
}

// ListPendingForUser returns pending requests addressed to user, for the
// /pending chat command.
func (b *Broker) ListPendingForUser(user string) []*Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*Request
	for _, e := range b.pending {
		if e.req.User == user {
			out = append(out, e.req)
		}
	}
	return out
}

// ListAllPending returns every pending request across all users, for the
// admin API's approvals listing.
func (b *Broker) ListAllPending() []*Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Request, 0, len(b.pending))
	for _, e := range b.pending {
		out = append(out, e.req)
	}
	return out
}

// FindPendingByIDPrefix resolves the /approve and /reject commands' short
// id prefix to a full pending request id.
func (b *Broker) FindPendingByIDPrefix(prefix string) (*Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, e := range b.pending {
		if len(prefix) <= len(id) && id[:len(prefix)] == prefix {
			return e.req, true
		}
	}
	return nil, false
}

func (b *Broker) fireEvent(req *Request) {
	if b.onEvent != nil {
		b.onEvent(req)
	}
}

func (b *Broker) filePath(id string) string {
	return filepath.Join(b.dir, id+".json")
}

func (b *Broker) persist(req *Request) error {
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal approval %s: %w", req.ID, err)
	}
	tmp := b.filePath(req.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write approval %s: %w", req.ID, err)
	}
	return os.Rename(tmp, b.filePath(req.ID))
}

func (b *Broker) load(filename string) (*Request, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, filename))
	if err != nil {
		return nil, err
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Get returns a request by id, whether pending or resolved.
func (b *Broker) Get(id string) (*Request, error) {
	b.mu.Lock()
	if e, ok := b.pending[id]; ok {
		b.mu.Unlock()
		return e.req, nil
	}
	b.mu.Unlock()
	return b.load(id + ".json")
}
