package builtin

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

// sanitizePattern strips everything but printable, non-control characters
// from system-control input before it ever reaches a platform invocation.
var sanitizePattern = regexp.MustCompile(`[^\x20-\x7E]`)

func sanitizeSystemInput(s string) string {
	return sanitizePattern.ReplaceAllString(s, "")
}

// registerSystemTools wires the system-control tool definitions named in the
// tool table. The concrete platform invocation (clipboard access, launching
// an application) is an external collaborator contract this kernel does not
// implement; both handlers enforce the permission gate and input
// sanitization and then report that no platform backend is attached.
func registerSystemTools(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "clipboard_write",
			Description: "Write text to the local clipboard, if a platform backend is attached.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"text": map[string]any{"type": "string"}}, "required": []string{"text"}}),
			Risk:        tools.RiskMedium,
			Category:    tools.CategorySystem,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			if !deps.Settings.Get().ToolPermissions.SystemControl {
				return tools.Result{Content: "Error: system control is disabled in current settings", IsError: true}, nil
			}
			var args struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			_ = sanitizeSystemInput(args.Text)
			return tools.Result{Content: "Error: no clipboard backend is attached to this host", IsError: true}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "open_application",
			Description: "Launch a named application on the local desktop, if a platform backend is attached.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"name": map[string]any{"type": "string"}}, "required": []string{"name"}}),
			Risk:        tools.RiskMedium,
			Category:    tools.CategorySystem,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			if !deps.Settings.Get().ToolPermissions.SystemControl {
				return tools.Result{Content: "Error: system control is disabled in current settings", IsError: true}, nil
			}
			var args struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			_ = sanitizeSystemInput(args.Name)
			return tools.Result{Content: "Error: no application-launch backend is attached to this host", IsError: true}, nil
		},
	})
}
