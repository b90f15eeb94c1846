package gateway

import (
	"encoding/json"
	"time"

	"github.com/kodokalabs/tetsuo.26/internal/approval"
	"github.com/kodokalabs/tetsuo.26/internal/events"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

// onToolEvent sanitizes a tool call/result before it reaches the WebSocket
// stream: input argument values are never broadcast, only their key names,
// and results are truncated to a short preview.
func (s *Server) onToolEvent(kind string, call tools.Call, result *tools.Result, duration time.Duration) {
	var inputKeys []string
	var m map[string]any
	if len(call.Input) > 0 {
		_ = json.Unmarshal(call.Input, &m)
		inputKeys = keysOf(m)
	}
	data := map[string]any{
		"tool":      call.Name,
		"channel":   call.Channel,
		"inputKeys": inputKeys,
	}
	if result != nil {
		data["resultPreview"] = previewString(result.Content, 200)
		data["isError"] = result.IsError
	}
	s.hub.publish(kind, data)

	if s.cfg.Metrics != nil && kind == "tool_result" && result != nil {
		outcome := "ok"
		if result.IsError {
			outcome = "error"
		}
		s.cfg.Metrics.RecordToolCall(call.Name, outcome, duration.Seconds())
	}
}

// onApprovalEvent reports only the metadata a dashboard needs, never the
// raw proposed action's argument values.
func (s *Server) onApprovalEvent(req *approval.Request) {
	s.hub.publish("approval", map[string]any{
		"id":      req.ID,
		"status":  req.Status,
		"tool":    req.Action.ToolName,
		"risk":    req.Risk,
		"channel": req.Channel,
	})

	if s.cfg.Metrics != nil && req.Status != approval.StatusPending && !req.ResolvedAt.IsZero() {
		s.cfg.Metrics.RecordApprovalResolved(string(req.Status), req.ResolvedAt.Sub(req.CreatedAt).Seconds())
	}
}

func (s *Server) onTriggerFired(f events.Fired) {
	s.hub.publish("trigger_fired", map[string]any{
		"triggerId": f.TriggerID,
		"source":    f.Source,
		"action":    f.Action.Kind,
	})

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordTriggerFire(string(f.Source))
	}
}

// onMessageReceived publishes the sanitized inbound-message event: channel,
// username, and a bounded preview, never the full message body.
func (s *Server) onMessageReceived(channel, user, text string) {
	s.hub.publish("message_received", map[string]any{
		"channel":  channel,
		"username": user,
		"preview":  previewString(text, 200),
	})
}
