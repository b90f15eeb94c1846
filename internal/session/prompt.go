package session

import (
	"fmt"
	"strings"
)

// autonomyInstruction renders the autonomy-level prose the system prompt
// embeds, per §4.1 step 4.
func autonomyInstruction(level string) string {
	switch level {
	case "medium":
		return "auto-safe, ask-destructive: run safe tools freely, ask before anything in the dangerous-tools set"
	case "high":
		return "only ask irreversible: proceed without asking unless an action cannot be undone"
	default:
		return "always ask: request approval before every tool call"
	}
}

// systemPrompt assembles the identity, timestamp, workspace, autonomy,
// memory, and usage sections from §4.1 step 4.
func (l *Loop) systemPrompt(in Inbound) string {
	settings := l.Settings.Get()
	today := l.Costs.Today()
	thread, _ := l.Threads.Load(in.Channel, in.User)

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a local AI agent host running tool-using turns for chat and automation.\n", settings.AgentName)
	fmt.Fprintf(&b, "Current time: %s\n", l.now().Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(&b, "Workspace root: %s\n", l.Workspace)
	fmt.Fprintf(&b, "Autonomy level: %s (%s)\n", settings.AutonomyLevel, autonomyInstruction(string(settings.AutonomyLevel)))
	if thread != nil && thread.Summary != "" {
		fmt.Fprintf(&b, "Memory summary:\n%s\n", thread.Summary)
	}
	fmt.Fprintf(&b, "Today's usage so far: %d calls, est. cost $%.4f\n", today.CallCount, today.EstimatedCost)
	return b.String()
}

// maxTriggerPayloadChars bounds the JSON payload embedded in trigger mode's
// synthetic user turn, per §4.1.
const maxTriggerPayloadChars = 3000

// frameTurn builds the synthetic user turn for heartbeat/trigger modes, or
// passes chat text through unchanged.
func (l *Loop) frameTurn(in Inbound) string {
	switch in.Mode {
	case ModeHeartbeat:
		return "Review these tasks; respond HEARTBEAT_OK if nothing to do."
	case ModeTrigger:
		payload := in.TriggerPayload
		if len(payload) > maxTriggerPayloadChars {
			payload = payload[:maxTriggerPayloadChars]
		}
		return fmt.Sprintf("Trigger %q (%s) fired, configured action: %s\nPayload: %s",
			in.TriggerName, in.TriggerType, in.TriggerAction, payload)
	default:
		return in.Text
	}
}
