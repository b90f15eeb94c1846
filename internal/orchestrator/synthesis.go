package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/kodokalabs/tetsuo.26/internal/llm"
)

const synthesisSystemPrompt = `You are the synthesis stage of a task orchestrator. Combine the subtask results below into
one coherent final answer to the original objective. Do not mention subtasks, tiers, or the planning process.`

// synthesize issues the final LLM call that turns every subtask's result
// into the parent task's result, per §4.2.
func (o *Orchestrator) synthesize(ctx context.Context, objective string, outcomes []subtaskOutcome) (string, error) {
	route, ok := o.Router.Route(llm.TierBalanced)
	if !ok {
		return "", fmt.Errorf("no balanced route configured for synthesis")
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Original objective: %s\n\n", objective)
	for _, o := range outcomes {
		if o.err != nil {
			fmt.Fprintf(&body, "Subtask %q failed: %s\n\n", o.subtask.Title, o.err.Error())
			continue
		}
		fmt.Fprintf(&body, "Subtask %q result:\n%s\n\n", o.subtask.Title, truncate(o.result, 5000))
	}

	resp, err := route.Provider.Complete(ctx, llm.Request{
		Model:     route.Model,
		System:    synthesisSystemPrompt,
		Messages:  []llm.Message{{Role: "user", Content: body.String()}},
		MaxTokens: 4000,
	})
	if err != nil {
		return "", fmt.Errorf("synthesis call: %w", err)
	}
	if o.Costs != nil {
		_ = o.Costs.TrackUsage(route.Provider.Name(), route.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens, route.Price.EstimateCost(resp.Usage))
	}
	return resp.Content, nil
}
