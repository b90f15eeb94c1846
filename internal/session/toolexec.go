package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kodokalabs/tetsuo.26/internal/approval"
	"github.com/kodokalabs/tetsuo.26/internal/llm"
	"github.com/kodokalabs/tetsuo.26/internal/security"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

// executeToolCalls runs every call concurrently, preserving the original
// call order in the returned slice (ordering by call id, per §4.1 step 7d)
// regardless of which goroutine finishes first.
func (l *Loop) executeToolCalls(ctx context.Context, in Inbound, calls []llm.ToolCall) []llm.Message {
	out := make([]llm.Message, len(calls))
	var wg sync.WaitGroup
	for i, tc := range calls {
		wg.Add(1)
		go func(i int, tc llm.ToolCall) {
			defer wg.Done()
			content := l.executeOne(ctx, in, tc)
			out[i] = llm.Message{Role: "tool", Content: content, ToolCallID: tc.ID}
		}(i, tc)
	}
	wg.Wait()
	return out
}

func (l *Loop) executeOne(ctx context.Context, in Inbound, tc llm.ToolCall) string {
	autonomy := string(l.Settings.Get().AutonomyLevel)
	call := tools.Call{ID: tc.ID, Name: tc.Name, Input: tc.Input, Channel: in.Channel, User: in.User}

	if l.Approvals != nil && security.RequiresApproval(autonomy, tc.Name) {
		var inputMap map[string]any
		_ = json.Unmarshal(tc.Input, &inputMap)
		req, future, err := l.Approvals.RequestApproval(approval.Params{
			Description: fmt.Sprintf("%s wants to call %s", in.User, tc.Name),
			Action:      approval.ProposedAction{ToolName: tc.Name, Input: inputMap},
			Risk:        riskFor(l, tc.Name),
			Channel:     in.Channel,
			User:        in.User,
		})
		if err != nil && err != approval.ErrAlreadyPending {
			return "Error: could not request approval: " + err.Error()
		}
		if err == nil {
			if !<-future {
				return fmt.Sprintf("tool call denied by approval decision %s", req.ID)
			}
		}
	}

	result, err := l.Tools.Execute(ctx, call)
	if err != nil {
		return "Error: " + err.Error()
	}
	return result.Content
}

func riskFor(l *Loop, toolName string) approval.Risk {
	def, ok := l.Tools.Get(toolName)
	if !ok {
		return approval.RiskMedium
	}
	switch def.Definition.Risk {
	case tools.RiskLow:
		return approval.RiskLow
	case tools.RiskHigh:
		return approval.RiskHigh
	case tools.RiskCritical:
		return approval.RiskCritical
	default:
		return approval.RiskMedium
	}
}
