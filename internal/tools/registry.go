package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MaxNameLength bounds a tool call's name field against malformed/hostile
// LLM output, mirroring the teacher registry's resource-exhaustion guard.
const MaxNameLength = 256

// MaxInputBytes bounds a tool call's raw JSON input.
const MaxInputBytes = 10 << 20

// AuditFunc records one completed call; Registry calls it after every
// execution, successful or not.
type AuditFunc func(call Call, result Result, blocked bool, reason string)

// EventFunc publishes tool-called / tool-result events onto the event plane.
// duration is zero for "tool_called" and the handler's wall-clock runtime
// for "tool_result".
type EventFunc func(kind string, call Call, result *Result, duration time.Duration)

// Registry is the process-global tool index: register once at start-up,
// execute many times concurrently. Safe for concurrent use.
type Registry struct {
	mu                 sync.RWMutex
	tools              map[string]Tool
	maxOutputChars     int
	audit              AuditFunc
	events             EventFunc
	categoryPermission func(Category) bool
}

// NewRegistry builds an empty Registry. maxOutputChars truncates every
// successful result (the settings-configured maxToolOutputChars).
func NewRegistry(maxOutputChars int) *Registry {
	if maxOutputChars <= 0 {
		maxOutputChars = 4000
	}
	return &Registry{
		tools:              map[string]Tool{},
		maxOutputChars:     maxOutputChars,
		categoryPermission: func(Category) bool { return true },
	}
}

// SetAudit installs the audit sink.
func (r *Registry) SetAudit(fn AuditFunc) { r.audit = fn }

// SetEvents installs the event-plane sink.
func (r *Registry) SetEvents(fn EventFunc) { r.events = fn }

// SetCategoryPermission installs the runtime-settings predicate deciding
// whether a tool category is currently enabled.
func (r *Registry) SetCategoryPermission(fn func(Category) bool) { r.categoryPermission = fn }

// Register adds or replaces a tool by name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name] = t
}

// Unregister removes a tool by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns every tool currently permitted by category, for the
// LLM's tool list (step 6 of the session-loop algorithm).
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.tools))
	for _, t := range r.tools {
		if r.categoryPermission(t.Category) {
			out = append(out, t.Definition)
		}
	}
	return out
}

// Execute looks up and runs a tool call end to end: name/size validation,
// tool-called event, handler invocation, output truncation, audit, and
// tool-result event. The error return is reserved for calls that should
// abort the worker turn entirely (there are none in the base implementation);
// ordinary failures come back as Result{IsError:true}.
func (r *Registry) Execute(ctx context.Context, call Call) (Result, error) {
	if len(call.Name) > MaxNameLength {
		res := Result{Content: fmt.Sprintf("Error: tool name exceeds %d characters", MaxNameLength), IsError: true}
		r.recordAudit(call, res, true, "tool name too long")
		return res, nil
	}
	if len(call.Input) > MaxInputBytes {
		res := Result{Content: fmt.Sprintf("Error: tool input exceeds %d bytes", MaxInputBytes), IsError: true}
		r.recordAudit(call, res, true, "tool input too large")
		return res, nil
	}

	r.mu.RLock()
	t, ok := r.tools[call.Name]
	r.mu.RUnlock()
	if !ok {
		res := Result{Content: "Error: unknown tool " + call.Name, IsError: true}
		r.recordAudit(call, res, true, "unknown tool")
		return res, nil
	}
	if !r.categoryPermission(t.Category) {
		res := Result{Content: "Error: tool category disabled by runtime settings: " + string(t.Category), IsError: true}
		r.recordAudit(call, res, true, "category disabled")
		return res, nil
	}
	if err := validateInput(t.Definition.Schema, call.Input); err != nil {
		res := Result{Content: "Error: " + err.Error(), IsError: true}
		r.recordAudit(call, res, true, "schema validation failed")
		return res, nil
	}

	r.fireEvent("tool_called", call, nil, 0)

	start := time.Now()
	result, err := t.Handler(ctx, call)
	elapsed := time.Since(start)
	if err != nil {
		result = Result{Content: "Error: " + err.Error(), IsError: true}
	}
	if !result.IsError && len(result.Content) > r.maxOutputChars {
		result.Content = result.Content[:r.maxOutputChars]
	}

	r.recordAudit(call, result, result.IsError, "")
	r.fireEvent("tool_result", call, &result, elapsed)
	return result, nil
}

func (r *Registry) recordAudit(call Call, result Result, blocked bool, reason string) {
	if r.audit != nil {
		r.audit(call, result, blocked, reason)
	}
}

func (r *Registry) fireEvent(kind string, call Call, result *Result, duration time.Duration) {
	if r.events != nil {
		r.events(kind, call, result, duration)
	}
}

// MarshalSchema is a convenience for handlers building an inline JSON-Schema
// parameter object without a separate .json asset.
func MarshalSchema(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}
