package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kodokalabs/tetsuo.26/internal/approval"
	"github.com/kodokalabs/tetsuo.26/internal/llm"
	"github.com/kodokalabs/tetsuo.26/internal/security"
	"github.com/kodokalabs/tetsuo.26/internal/tasks"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

// maxWorkerIterations bounds a subtask worker turn the same way the session
// loop bounds a conversational turn: on an untrusted model that never stops
// calling tools, the turn still terminates.
const maxWorkerIterations = 12

// truncate caps s at n runes, used for the previous-results context a
// subtask's system prompt embeds per §4.2.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// runWorkerTurn executes one subtask as its own bounded tool-iteration loop
// against the routed provider, mirroring the session loop's algorithm
// (§4.1) without its chat-command or thread-persistence concerns, which do
// not apply to a subtask worker.
func (o *Orchestrator) runWorkerTurn(ctx context.Context, st PlannedSubtask, childTask *tasks.Task, parent *tasks.Task, parentObjective string, priorResults []string) (string, error) {
	route, warning := o.routeForSubtask(st)
	if route.Provider == nil {
		return "", fmt.Errorf("no model route available for subtask %q", st.Title)
	}

	var sys strings.Builder
	fmt.Fprintf(&sys, "You are a specialized worker with role %q, executing one subtask of a larger objective.\n", st.Role)
	fmt.Fprintf(&sys, "Parent objective: %s\n", parentObjective)
	fmt.Fprintf(&sys, "Your subtask: %s\n", st.Description)
	if warning != "" {
		fmt.Fprintf(&sys, "Routing note: %s\n", warning)
	}
	if len(priorResults) > 0 {
		sys.WriteString("Results from subtasks already completed:\n")
		for _, r := range priorResults {
			fmt.Fprintf(&sys, "- %s\n", truncate(r, 2000))
		}
	}

	messages := []llm.Message{{Role: "user", Content: st.Description}}
	defs := o.Tools.Definitions()
	toolDefs := make([]llm.ToolDefinition, len(defs))
	for i, d := range defs {
		toolDefs[i] = llm.ToolDefinition{Name: d.Name, Description: d.Description, Schema: d.Schema}
	}

	for i := 0; i < maxWorkerIterations; i++ {
		resp, err := route.Provider.Complete(ctx, llm.Request{
			Model:     route.Model,
			System:    sys.String(),
			Messages:  messages,
			Tools:     toolDefs,
			MaxTokens: 4000,
		})
		if err != nil {
			return "", fmt.Errorf("subtask %q: %w", st.Title, err)
		}

		cost := route.Price.EstimateCost(resp.Usage)
		if o.Costs != nil {
			_ = o.Costs.TrackUsage(route.Provider.Name(), route.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens, cost)
		}
		if childTask != nil {
			_, _ = o.Tasks.AddUsage(childTask.ID, resp.Usage.InputTokens, resp.Usage.OutputTokens, cost)
		}
		if parent != nil {
			_, _ = o.Tasks.AddUsage(parent.ID, resp.Usage.InputTokens, resp.Usage.OutputTokens, cost)
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		messages = append(messages, llm.Message{Role: "assistant", Content: resp.Content, ToolCalls: resp.ToolCalls})
		results := make([]llm.Message, len(resp.ToolCalls))
		for idx, tc := range resp.ToolCalls {
			result := o.executeToolCall(ctx, tc, st, childTask)
			results[idx] = llm.Message{Role: "tool", Content: result, ToolCallID: tc.ID}
		}
		messages = append(messages, results...)
	}
	return "", fmt.Errorf("subtask %q exceeded the worker iteration cap", st.Title)
}

// executeToolCall runs one tool call through the shared registry, honoring
// the current autonomy level's approval gate before dangerous calls proceed.
func (o *Orchestrator) executeToolCall(ctx context.Context, tc llm.ToolCall, st PlannedSubtask, childTask *tasks.Task) string {
	autonomy := "low"
	if o.Settings != nil {
		autonomy = string(o.Settings.Get().AutonomyLevel)
	}

	call := tools.Call{ID: tc.ID, Name: tc.Name, Input: tc.Input, User: "orchestrator"}
	if childTask != nil {
		call.Channel = childTask.Source.Channel
		call.User = childTask.Source.User
	}

	if o.Approvals != nil && security.RequiresApproval(autonomy, tc.Name) {
		var inputMap map[string]any
		_ = json.Unmarshal(tc.Input, &inputMap)
		taskID := ""
		if childTask != nil {
			taskID = childTask.ID
		}
		req, future, err := o.Approvals.RequestApproval(approval.Params{
			TaskID:      taskID,
			Description: fmt.Sprintf("subtask %q wants to call %s", st.Title, tc.Name),
			Action:      approval.ProposedAction{ToolName: tc.Name, Input: inputMap},
			Risk:        approval.RiskMedium,
			Channel:     call.Channel,
			User:        call.User,
		})
		if err != nil && err != approval.ErrAlreadyPending {
			return "Error: could not request approval: " + err.Error()
		}
		if err == nil {
			approved := <-future
			if !approved {
				return fmt.Sprintf("tool call denied by approval decision %s", req.ID)
			}
		}
	}

	result, err := o.Tools.Execute(ctx, call)
	if err != nil {
		return "Error: " + err.Error()
	}
	return result.Content
}
