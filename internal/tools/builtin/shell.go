package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kodokalabs/tetsuo.26/internal/sandbox"
	"github.com/kodokalabs/tetsuo.26/internal/security"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

const (
	maxShellTimeout  = 120 * time.Second
	maxShellOutput   = 5 << 20
	maxStdoutPreview = 10000
	maxStderrPreview = 5000
)

// strippedEnvSuffixes lists the credential-shaped variable name suffixes
// scrubbed from a spawned shell's environment.
var strippedEnvSuffixes = []string{"_API_KEY", "_TOKEN", "_BOT_TOKEN"}

func sanitizedEnv() []string {
	var out []string
	for _, kv := range os.Environ() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			out = append(out, kv)
			continue
		}
		stripped := false
		for _, suffix := range strippedEnvSuffixes {
			if strings.HasSuffix(name, suffix) {
				stripped = true
				break
			}
		}
		if !stripped {
			out = append(out, kv)
		}
	}
	return out
}

// limitedWriter caps how many bytes accumulate in a buffer, mirroring the
// output-bound exec managers in the corpus.
type limitedWriter struct {
	buf   bytes.Buffer
	limit int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	w.buf.Write(p)
	return len(p), nil
}

func registerShellTool(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "run_shell",
			Description: "Run a shell command with cwd pinned inside the workspace. Destructive commands are blocked.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"command":        map[string]any{"type": "string"},
					"timeoutSeconds": map[string]any{"type": "integer"},
				},
				"required": []string{"command"},
			}),
			Risk:     tools.RiskHigh,
			Category: tools.CategoryShell,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Command        string `json:"command"`
				TimeoutSeconds int    `json:"timeoutSeconds"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			if err := security.ValidateShellCommand(args.Command); err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}

			timeout := time.Duration(args.TimeoutSeconds) * time.Second
			if timeout <= 0 || timeout > maxShellTimeout {
				timeout = maxShellTimeout
			}

			if deps.Settings.Get().Security.SandboxEnabled {
				return runSandboxedShell(ctx, deps, args.Command, timeout)
			}

			runCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			cmd := exec.CommandContext(runCtx, "sh", "-c", args.Command)
			cmd.Dir = deps.Jail.Root
			cmd.Env = sanitizedEnv()
			stdout := &limitedWriter{limit: maxShellOutput}
			stderr := &limitedWriter{limit: maxShellOutput}
			cmd.Stdout = stdout
			cmd.Stderr = stderr

			runErr := cmd.Run()

			out := stdout.buf.String()
			if len(out) > maxStdoutPreview {
				out = out[:maxStdoutPreview]
			}
			errOut := stderr.buf.String()
			if len(errOut) > maxStderrPreview {
				errOut = errOut[:maxStderrPreview]
			}

			var b strings.Builder
			fmt.Fprintf(&b, "exit: %v\nstdout:\n%s\nstderr:\n%s", exitDescription(runErr), out, errOut)
			return tools.Result{Content: b.String()}, nil
		},
	})
}

// runSandboxedShell routes a run_shell call through the Docker sandbox
// instead of the host shell, per settings.Security.SandboxEnabled. The
// workspace mounts read-write since run_shell is documented to operate on
// files under the jail root the same way the unsandboxed path does.
func runSandboxedShell(ctx context.Context, deps *Deps, command string, timeout time.Duration) (tools.Result, error) {
	result, err := deps.Sandbox.Execute(ctx, sandbox.ExecuteParams{
		Language:        "bash",
		Code:            command,
		Timeout:         timeout,
		WorkspaceAccess: sandbox.WorkspaceReadWrite,
	})
	if err != nil {
		return tools.Result{Content: "Error: sandboxed execution failed: " + err.Error(), IsError: true}, nil
	}
	return tools.Result{Content: sandbox.FormatResult(result), IsError: result.ExitCode != 0 || result.Error != ""}, nil
}

func exitDescription(err error) string {
	if err == nil {
		return "0"
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Sprintf("%d", exitErr.ExitCode())
	}
	return err.Error()
}
