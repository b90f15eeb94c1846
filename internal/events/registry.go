package events

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the process-global trigger index: a whole-array rewrite of
// triggers.json on every mutation, matching the on-disk layout contract.
type Registry struct {
	mu       sync.Mutex
	path     string
	triggers map[string]*Trigger
	now      func() time.Time
	onFire   func(Fired)
}

// NewRegistry loads triggers.json under workspace, starting empty if absent.
func NewRegistry(workspace string) (*Registry, error) {
	r := &Registry{
		path:     filepath.Join(workspace, "triggers.json"),
		triggers: map[string]*Trigger{},
		now:      time.Now,
	}
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read triggers.json: %w", err)
	}
	var list []*Trigger
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse triggers.json: %w", err)
	}
	for _, t := range list {
		r.triggers[t.ID] = t
	}
	return r, nil
}

// OnFire installs the callback invoked whenever Fire records a trigger
// firing, used to publish onto the event plane / WebSocket hub.
func (r *Registry) OnFire(fn func(Fired)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFire = fn
}

// Create registers a new trigger and persists the updated set.
func (r *Registry) Create(kind Kind, name string, config map[string]any, action Action) (*Trigger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &Trigger{
		ID:      uuid.NewString(),
		Type:    kind,
		Name:    name,
		Enabled: true,
		Config:  config,
		Action:  action,
	}
	r.triggers[t.ID] = t
	return t, r.persistLocked()
}

// Get returns a trigger by id.
func (r *Registry) Get(id string) (*Trigger, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.triggers[id]
	return t, ok
}

// All returns every trigger.
func (r *Registry) All() []*Trigger {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Trigger, 0, len(r.triggers))
	for _, t := range r.triggers {
		out = append(out, t)
	}
	return out
}

// Toggle flips a trigger's enabled flag.
func (r *Registry) Toggle(id string) (*Trigger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.triggers[id]
	if !ok {
		return nil, fmt.Errorf("trigger %s not found", id)
	}
	t.Enabled = !t.Enabled
	return t, r.persistLocked()
}

// Delete removes a trigger.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.triggers, id)
	return r.persistLocked()
}

// Fire records one trigger firing: increments the counter, stamps
// lastTriggered, persists, and publishes a Fired event with payload merged
// into the configured Action.
func (r *Registry) Fire(id string, payload map[string]any) error {
	r.mu.Lock()
	t, ok := r.triggers[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("trigger %s not found", id)
	}
	now := r.now()
	t.LastTriggered = &now
	t.FireCount++
	action := t.Action
	kind := t.Type
	err := r.persistLocked()
	fn := r.onFire
	r.mu.Unlock()

	if err != nil {
		return err
	}
	if fn != nil {
		fn(Fired{TriggerID: id, Source: kind, Action: action, Payload: payload})
	}
	return nil
}

func (r *Registry) persistLocked() error {
	list := make([]*Trigger, 0, len(r.triggers))
	for _, t := range r.triggers {
		list = append(list, t)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal triggers: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write triggers: %w", err)
	}
	return os.Rename(tmp, r.path)
}
