// Package tasks implements the persistent task queue: the Task state
// machine and its crash-safe on-disk JSON representation.
package tasks

import "time"

// Status is the Task lifecycle state.
type Status string

const (
	StatusPending          Status = "pending"
	StatusRunning          Status = "running"
	StatusWaitingApproval  Status = "waiting_approval"
	StatusPaused           Status = "paused"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
	StatusCancelled        Status = "cancelled"
)

// Priority orders pending tasks; lower value runs first.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// rank maps Priority to the sort weight from §4.3 (critical=0 … low=3).
func (p Priority) rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// Step is one unit of work within a Task's ordered step list.
type Step struct {
	Title     string `json:"title"`
	Done      bool   `json:"done"`
	Result    string `json:"result,omitempty"`
}

// Source identifies where a task originated.
type Source struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
}

// Usage is the cumulative token/cost ledger attached to a task.
type Usage struct {
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	Cost         float64 `json:"cost"`
}

// Task is the persistent work item: created by the session loop or the
// orchestrator, mutated only by its owning worker turn.
type Task struct {
	ID               string     `json:"id"`
	ParentID         string     `json:"parentId,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	Progress         int        `json:"progress"`
	Steps            []Step     `json:"steps,omitempty"`
	CurrentStepIndex int        `json:"currentStepIndex"`
	Result           string     `json:"result,omitempty"`
	Error            string     `json:"error,omitempty"`
	Source           Source     `json:"source"`
	Provider         string     `json:"provider,omitempty"`
	Model            string     `json:"model,omitempty"`
	Usage            Usage      `json:"usage"`
	Scratchpad       []string   `json:"scratchpad,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

// recomputeProgress re-derives Progress from step completion ratios
// whenever steps are in use, per §4.3.
func (t *Task) recomputeProgress() {
	if len(t.Steps) == 0 {
		return
	}
	done := 0
	for _, s := range t.Steps {
		if s.Done {
			done++
		}
	}
	t.Progress = (done * 100) / len(t.Steps)
}

// normalizeInvariants enforces the Task invariants from §3 after any
// mutation: currentStepIndex bound, completed⇔progress=100, and
// completedAt set iff status is terminal-completed/failed.
func (t *Task) normalizeInvariants(now time.Time) {
	if t.CurrentStepIndex > len(t.Steps) {
		t.CurrentStepIndex = len(t.Steps)
	}
	if t.Status == StatusCompleted {
		t.Progress = 100
	}
	if t.Progress == 100 && t.Status == StatusRunning {
		t.Status = StatusCompleted
	}
	if t.Status == StatusCompleted || t.Status == StatusFailed {
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
}
