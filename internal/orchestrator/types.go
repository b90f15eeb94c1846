// Package orchestrator decomposes a complex request into a dependency-graphed
// plan of sub-agents, routes each subtask to a model tier, runs parallel
// groups of worker turns concurrently, and synthesizes their results into
// one final answer attached to the parent task.
package orchestrator

import "github.com/kodokalabs/tetsuo.26/internal/llm"

// PlannedSubtask is one entry of the LLM's JSON planning contract.
type PlannedSubtask struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Role            string   `json:"role"`
	ModelTier       string   `json:"modelTier,omitempty"`
	ParallelGroup   string   `json:"parallelGroup,omitempty"`
	Complexity      int      `json:"complexity"`
	RequiresPrivacy bool     `json:"requiresPrivacy"`
	DependsOn       []string `json:"dependsOn,omitempty"`
}

// Plan is the parsed (or degraded) output of one planning call.
type Plan struct {
	Subtasks []PlannedSubtask `json:"subtasks"`
}

// degradedPlan builds the single-subtask fallback plan used whenever the
// model's JSON cannot be parsed, per the OrchestratorPlanError contract.
func degradedPlan(description string) Plan {
	return Plan{Subtasks: []PlannedSubtask{{
		Title:       "Complete the request",
		Description: description,
		Role:        "generalist",
		ModelTier:   string(llm.TierBalanced),
		Complexity:  5,
	}}}
}

// subtaskOutcome records one worker turn's settled result, carried from
// execution into synthesis.
type subtaskOutcome struct {
	subtask PlannedSubtask
	taskID  string
	result  string
	err     error
}
