package builtin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kodokalabs/tetsuo.26/internal/sandbox"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

// maxRunCodeTimeout caps a run_code call the same way maxShellTimeout bounds
// run_shell.
const maxRunCodeTimeout = 300 * time.Second

// registerRunCodeTool registers run_code, the sandboxed counterpart to
// run_shell for Python/Node.js/Go snippets. Unlike run_shell, run_code has
// no unsandboxed fallback: when sandboxing is disabled the tool reports
// itself unavailable rather than executing arbitrary interpreted code on
// the host.
func registerRunCodeTool(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "run_code",
			Description: "Execute a Python, Node.js, or Go snippet in an isolated, network-disabled sandbox and return stdout/stderr/exit code.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"language":       map[string]any{"type": "string", "enum": []string{"python", "nodejs", "go"}},
					"code":           map[string]any{"type": "string"},
					"stdin":          map[string]any{"type": "string"},
					"timeoutSeconds": map[string]any{"type": "integer"},
				},
				"required": []string{"language", "code"},
			}),
			Risk:     tools.RiskHigh,
			Category: tools.CategoryShell,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			if !deps.Settings.Get().Security.SandboxEnabled {
				return tools.Result{
					Content: "Error: run_code requires sandboxing; enable security.sandboxEnabled to use it.",
					IsError: true,
				}, nil
			}
			var args struct {
				Language       string `json:"language"`
				Code           string `json:"code"`
				Stdin          string `json:"stdin"`
				TimeoutSeconds int    `json:"timeoutSeconds"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}

			timeout := time.Duration(args.TimeoutSeconds) * time.Second
			if timeout <= 0 || timeout > maxRunCodeTimeout {
				timeout = maxRunCodeTimeout
			}

			result, err := deps.Sandbox.Execute(ctx, sandbox.ExecuteParams{
				Language:        args.Language,
				Code:            args.Code,
				Stdin:           args.Stdin,
				Timeout:         timeout,
				WorkspaceAccess: sandbox.WorkspaceNone,
			})
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: sandbox.FormatResult(result), IsError: result.ExitCode != 0 || result.Error != ""}, nil
		},
	})
}
