package orchestrator

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kodokalabs/tetsuo.26/internal/llm"
)

const planningSystemPrompt = `You are the planning stage of a task orchestrator. Decompose the objective into subtasks.
Respond with JSON only, no prose, matching exactly this shape:
{"subtasks":[{"title":"...","description":"...","role":"...","modelTier":"fast|balanced|reasoning|local","parallelGroup":"A","complexity":1-10,"requiresPrivacy":false,"dependsOn":["other title"]}]}
Group subtasks that can run concurrently under the same parallelGroup letter; leave parallelGroup empty for a subtask
that must run sequentially after all groups. Order groups so a subtask's dependencies fall in an earlier group.`

// plan issues the single JSON-contract planning call and degrades to a
// one-subtask plan if the response cannot be parsed.
func (o *Orchestrator) plan(ctx context.Context, description string) Plan {
	route, ok := o.Router.Route(llm.TierBalanced)
	if !ok {
		return degradedPlan(description)
	}

	resp, err := route.Provider.Complete(ctx, llm.Request{
		Model:  route.Model,
		System: planningSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: description},
		},
		MaxTokens: 2000,
	})
	if err != nil {
		return degradedPlan(description)
	}
	if o.Costs != nil {
		_ = o.Costs.TrackUsage(route.Provider.Name(), route.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens, route.Price.EstimateCost(resp.Usage))
	}

	var parsed Plan
	if err := json.Unmarshal([]byte(extractJSONObject(resp.Content)), &parsed); err != nil || len(parsed.Subtasks) == 0 {
		return degradedPlan(description)
	}
	return parsed
}

// extractJSONObject trims a surrounding markdown code fence, since models
// asked for "JSON only" still sometimes wrap the object in one.
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
