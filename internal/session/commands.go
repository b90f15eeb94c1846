package session

import (
	"fmt"
	"strings"
)

// handleChatCommand matches the chat-command table from §4.1, case
// insensitively, before the LLM ever sees the message. The second return
// value is false when text is not a recognized command, so the caller falls
// through to the normal loop.
func (l *Loop) handleChatCommand(in Inbound) (string, bool) {
	text := strings.TrimSpace(in.Text)
	lower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(lower, "/approve "):
		return l.resolveApprovalCommand(strings.TrimSpace(text[len("/approve "):]), true, in.User), true

	case strings.HasPrefix(lower, "/reject "):
		return l.resolveApprovalCommand(strings.TrimSpace(text[len("/reject "):]), false, in.User), true

	case lower == "/pending":
		return l.pendingCommand(in.User), true

	case lower == "/tasks":
		return l.tasksCommand(), true

	case lower == "/cost" || lower == "/costs":
		return l.costCommand(), true
	}
	return "", false
}

func (l *Loop) resolveApprovalCommand(prefix string, approved bool, resolver string) string {
	if prefix == "" {
		return "Usage: /approve <id-prefix> or /reject <id-prefix>"
	}
	req, ok := l.Approvals.FindPendingByIDPrefix(prefix)
	if !ok {
		return "No pending approval matches prefix " + prefix
	}
	resolved, err := l.Approvals.Resolve(req.ID, approved, resolver)
	if err != nil {
		return "Error: " + err.Error()
	}
	return fmt.Sprintf("Request %s is now %s.", resolved.ID, resolved.Status)
}

func (l *Loop) pendingCommand(user string) string {
	reqs := l.Approvals.ListPendingForUser(user)
	if len(reqs) == 0 {
		return "No approvals pending for you."
	}
	var b strings.Builder
	for _, r := range reqs {
		fmt.Fprintf(&b, "%s — %s (%s, risk=%s)\n", r.ID[:8], r.Description, r.Action.ToolName, r.Risk)
	}
	return strings.TrimSpace(b.String())
}

func (l *Loop) tasksCommand() string {
	recent := l.Tasks.ListRecent(15)
	if len(recent) == 0 {
		return "No tasks yet."
	}
	var b strings.Builder
	for _, t := range recent {
		fmt.Fprintf(&b, "%s — %s (%d%%, $%.4f)\n", t.Status, t.Title, t.Progress, t.Usage.Cost)
	}
	return strings.TrimSpace(b.String())
}

func (l *Loop) costCommand() string {
	today := l.Costs.Today()
	return fmt.Sprintf("Today: %d calls, %d input tokens, %d output tokens, est. cost $%.4f",
		today.CallCount, today.InputTokens, today.OutputTokens, today.EstimatedCost)
}
