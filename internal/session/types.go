// Package session implements the agentic tool-use loop that drives one
// conversational turn: chat-command interception, budget gating, thread
// assembly, and bounded LLM/tool iteration.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/kodokalabs/tetsuo.26/internal/approval"
	"github.com/kodokalabs/tetsuo.26/internal/audit"
	"github.com/kodokalabs/tetsuo.26/internal/costs"
	"github.com/kodokalabs/tetsuo.26/internal/llm"
	"github.com/kodokalabs/tetsuo.26/internal/memory"
	"github.com/kodokalabs/tetsuo.26/internal/settings"
	"github.com/kodokalabs/tetsuo.26/internal/tasks"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

// errNoRoute is returned when the default model tier has no configured
// route, which would otherwise stop the loop with a bare nil-pointer panic.
var errNoRoute = fmt.Errorf("session: no model route configured for the default tier")

// Inbound is one request into the loop: a chat message, a heartbeat tick, or
// a fired trigger, distinguished by Mode. TriggerName/TriggerType/TriggerPayload
// are only consulted when Mode is ModeTrigger.
type Inbound struct {
	Channel        string
	User           string
	Text           string
	Mode           Mode
	TriggerName    string
	TriggerType    string
	TriggerAction  string
	TriggerPayload string
}

// Mode selects which synthetic framing wraps the user turn before the LLM
// sees it.
type Mode int

const (
	ModeChat Mode = iota
	ModeHeartbeat
	ModeTrigger
)

// defaultMaxToolIterations is used when settings.Limits.MaxToolCallsPerTurn
// is unset (zero value), which should not normally happen once Default() has
// run, but guards against a zeroed settings document.
const defaultMaxToolIterations = 25

// Loop is the process-global session-loop singleton: one instance serves
// every channel and user, synchronizing only through its collaborators.
type Loop struct {
	Router      *llm.Router
	DefaultTier llm.Tier
	Tools       *tools.Registry
	Tasks       *tasks.Store
	Approvals   *approval.Broker
	Costs       *costs.Manager
	Threads     *memory.Store
	Settings    *settings.Store
	Audit       *audit.Logger
	Workspace   string
	Now         func() time.Time

	// OnInbound, if set, is notified of every chat-mode message before it
	// reaches the LLM, letting the gateway broadcast a sanitized
	// message_received event without this package knowing about WebSockets.
	OnInbound func(channel, user, text string)
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Run executes the full algorithm from §4.1 for one Inbound message and
// returns the reply string to deliver back on the channel. An empty reply
// with no error means "suppress" (used by heartbeat's HEARTBEAT_OK path).
func (l *Loop) Run(ctx context.Context, in Inbound) (string, error) {
	if in.Mode == ModeChat {
		if reply, handled := l.handleChatCommand(in); handled {
			return reply, nil
		}
		if l.OnInbound != nil {
			l.OnInbound(in.Channel, in.User, in.Text)
		}
	}

	if !l.Costs.CanMakeCall() {
		return "Budget exceeded for today: further LLM calls are paused until the daily budget resets or is raised.", nil
	}

	thread, err := l.Threads.Load(in.Channel, in.User)
	if err != nil {
		return "", err
	}

	userText := l.frameTurn(in)
	sys := l.systemPrompt(in)

	messages := make([]llm.Message, 0, len(thread.Turns)+1)
	for _, t := range thread.Turns {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content, ToolCalls: t.ToolCalls, ToolCallID: t.ToolCallID})
	}
	messages = append(messages, llm.Message{Role: "user", Content: userText})

	if _, err := l.Threads.AppendTurn(in.Channel, in.User, memory.Turn{Role: "user", Content: userText}); err != nil {
		return "", err
	}

	route, ok := l.Router.Route(l.defaultTier())
	if !ok {
		return "", errNoRoute
	}

	defs := l.Tools.Definitions()
	toolDefs := make([]llm.ToolDefinition, len(defs))
	for i, d := range defs {
		toolDefs[i] = llm.ToolDefinition{Name: d.Name, Description: d.Description, Schema: d.Schema}
	}

	maxIterations := l.Settings.Get().Limits.MaxToolCallsPerTurn
	if maxIterations <= 0 {
		maxIterations = defaultMaxToolIterations
	}
	for i := 0; i < maxIterations; i++ {
		resp, err := route.Provider.Complete(ctx, llm.Request{
			Model:     route.Model,
			System:    sys,
			Messages:  messages,
			Tools:     toolDefs,
			MaxTokens: 4000,
		})
		if err != nil {
			return "", err
		}
		cost := route.Price.EstimateCost(resp.Usage)
		_ = l.Costs.TrackUsage(route.Provider.Name(), route.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens, cost)

		if len(resp.ToolCalls) == 0 {
			if in.Mode == ModeHeartbeat && resp.Content == "HEARTBEAT_OK" {
				return "", nil
			}
			if _, err := l.Threads.AppendTurn(in.Channel, in.User, memory.Turn{Role: "assistant", Content: resp.Content}); err != nil {
				return "", err
			}
			return resp.Content, nil
		}

		messages = append(messages, llm.Message{Role: "assistant", Content: resp.Content, ToolCalls: resp.ToolCalls})
		if _, err := l.Threads.AppendTurn(in.Channel, in.User, memory.Turn{Role: "assistant", Content: resp.Content, ToolCalls: resp.ToolCalls}); err != nil {
			return "", err
		}
		results := l.executeToolCalls(ctx, in, resp.ToolCalls)
		messages = append(messages, results...)
		for _, r := range results {
			if _, err := l.Threads.AppendTurn(in.Channel, in.User, memory.Turn{Role: "tool", Content: r.Content, ToolCallID: r.ToolCallID}); err != nil {
				return "", err
			}
		}
	}

	notice := "Reached the maximum number of tool calls for this turn; stopping here with whatever was accomplished."
	if _, err := l.Threads.AppendTurn(in.Channel, in.User, memory.Turn{Role: "assistant", Content: notice}); err != nil {
		return "", err
	}
	return notice, nil
}

func (l *Loop) defaultTier() llm.Tier {
	if l.DefaultTier != "" {
		return l.DefaultTier
	}
	return llm.TierBalanced
}
