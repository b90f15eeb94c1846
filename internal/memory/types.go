// Package memory owns the ConversationThread the session loop reads and
// writes each turn, plus a small markdown-backed note store behind the
// remember/recall tools.
package memory

import (
	"time"

	"github.com/kodokalabs/tetsuo.26/internal/llm"
)

// Turn is one message in a conversation, role one of system/user/assistant/tool.
// ToolCalls carries the model's requested invocations on an assistant turn;
// ToolCallID identifies which call a tool-role turn's content answers.
type Turn struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	At         time.Time      `json:"at"`
	ToolCalls  []llm.ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string         `json:"toolCallId,omitempty"`
}

// Thread is keyed by (channel, user) and holds the running chat history plus
// its rolling summary, per §3.
type Thread struct {
	Channel   string    `json:"channel"`
	User      string    `json:"user"`
	Turns     []Turn    `json:"turns"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SoftCap is the turn count above which the oldest prefix is folded into
// Summary and trimmed.
const SoftCap = 100

// MaxSummaryChars bounds Summary's growth.
const MaxSummaryChars = 2000

// key identifies a thread by its owning channel and user.
func key(channel, user string) string { return channel + "\x00" + user }
