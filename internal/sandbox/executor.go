// Package sandbox runs shell and code-execution tool calls inside a
// throwaway Docker container instead of the host shell, gated behind
// settings.Security.SandboxEnabled. The container gets no network access and
// a scratch workspace copied in rather than the real one, mirroring the
// Docker backend of the teacher's execute_code tool.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// WorkspaceAccessMode controls how much of the workspace, if any, is visible
// to the container.
type WorkspaceAccessMode string

const (
	// WorkspaceNone mounts nothing: the scratch workspace is copied into the
	// container with docker cp, so no host path appears in its mounts.
	WorkspaceNone WorkspaceAccessMode = "none"
	// WorkspaceReadOnly mounts the workspace read-only (default).
	WorkspaceReadOnly WorkspaceAccessMode = "ro"
	// WorkspaceReadWrite mounts the workspace read-write.
	WorkspaceReadWrite WorkspaceAccessMode = "rw"
)

// ExecuteParams is one sandboxed run request.
type ExecuteParams struct {
	Language        string
	Code            string
	Stdin           string
	Timeout         time.Duration
	CPULimit        int // millicores, default 1000
	MemLimit        int // MB, default 512
	WorkspaceAccess WorkspaceAccessMode
}

// ExecuteResult is the outcome of one sandboxed run.
type ExecuteResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Error    string
	Timeout  bool
}

// Config configures an Executor's Docker invocations.
type Config struct {
	DefaultCPU      int
	DefaultMemory   int
	NetworkEnabled  bool
	WorkspaceRoot   string
	WorkspaceAccess WorkspaceAccessMode
}

// Option mutates a Config at construction time.
type Option func(*Config)

// WithDefaultCPU sets the default CPU limit in millicores.
func WithDefaultCPU(millicores int) Option {
	return func(c *Config) { c.DefaultCPU = millicores }
}

// WithDefaultMemory sets the default memory limit in MB.
func WithDefaultMemory(megabytes int) Option {
	return func(c *Config) { c.DefaultMemory = megabytes }
}

// WithWorkspaceRoot sets the directory under which scratch workspaces are
// created.
func WithWorkspaceRoot(root string) Option {
	return func(c *Config) { c.WorkspaceRoot = root }
}

// WithDefaultWorkspaceAccess sets the access mode used when a call doesn't
// specify one.
func WithDefaultWorkspaceAccess(mode WorkspaceAccessMode) Option {
	return func(c *Config) { c.WorkspaceAccess = mode }
}

// Executor runs ExecuteParams inside a fresh, network-disabled Docker
// container per call. It holds no pool: dockerExecutor invocations are
// stateless, so there is nothing worth keeping warm between calls.
type Executor struct {
	cfg Config
}

// NewExecutor builds an Executor. It does not verify the docker binary is
// reachable; that surfaces as an Execute-time error instead, the same way
// the teacher's executor degrades a missing firecracker binary to its Docker
// fallback rather than failing construction.
func NewExecutor(opts ...Option) *Executor {
	cfg := Config{
		DefaultCPU:      1000,
		DefaultMemory:   512,
		NetworkEnabled:  false,
		WorkspaceAccess: WorkspaceReadOnly,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Executor{cfg: cfg}
}

// Execute runs one sandboxed call to completion or until params.Timeout
// elapses.
func (e *Executor) Execute(ctx context.Context, params ExecuteParams) (*ExecuteResult, error) {
	if !isValidLanguage(params.Language) {
		return nil, fmt.Errorf("unsupported language %q: supported are python, nodejs, go, bash", params.Language)
	}
	if params.Timeout <= 0 {
		params.Timeout = 30 * time.Second
	}
	if params.CPULimit <= 0 {
		params.CPULimit = e.cfg.DefaultCPU
	}
	if params.MemLimit <= 0 {
		params.MemLimit = e.cfg.DefaultMemory
	}
	if params.WorkspaceAccess == "" {
		params.WorkspaceAccess = e.cfg.WorkspaceAccess
	}

	runCtx, cancel := context.WithTimeout(ctx, params.Timeout)
	defer cancel()

	workspace, err := prepareWorkspace(&params, e.cfg.WorkspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("prepare sandbox workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	d := &dockerExecutor{networkEnabled: e.cfg.NetworkEnabled}
	result, err := d.run(runCtx, &params, workspace)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return &ExecuteResult{Error: "execution timeout", Timeout: true}, nil
		}
		return nil, err
	}
	return result, nil
}

func isValidLanguage(language string) bool {
	switch language {
	case "python", "nodejs", "go", "bash":
		return true
	default:
		return false
	}
}

func prepareWorkspace(params *ExecuteParams, workspaceRoot string) (string, error) {
	workspaceRoot = strings.TrimSpace(workspaceRoot)
	if workspaceRoot != "" {
		if err := os.MkdirAll(workspaceRoot, 0o700); err != nil {
			return "", err
		}
	}
	workspace, err := os.MkdirTemp(workspaceRoot, "sandbox-*")
	if err != nil {
		return "", err
	}
	mainFile := mainFilename(params.Language)
	if err := os.WriteFile(filepath.Join(workspace, mainFile), []byte(params.Code), 0o644); err != nil {
		os.RemoveAll(workspace)
		return "", err
	}
	return workspace, nil
}

func mainFilename(language string) string {
	switch language {
	case "python":
		return "main.py"
	case "nodejs":
		return "main.js"
	case "go":
		return "main.go"
	default:
		return "main.sh"
	}
}

func dockerImage(language string) string {
	switch language {
	case "python":
		return "python:3.11-alpine"
	case "nodejs":
		return "node:20-alpine"
	case "go":
		return "golang:1.24-alpine"
	default:
		return "bash:5-alpine"
	}
}

func runCommand(language string) []string {
	switch language {
	case "python":
		return []string{"python", "main.py"}
	case "nodejs":
		return []string{"node", "main.js"}
	case "go":
		return []string{"sh", "-c", "go run main.go"}
	default:
		return []string{"bash", "main.sh"}
	}
}

// dockerExecutor runs one call as a `docker run --rm` invocation.
type dockerExecutor struct {
	networkEnabled bool
}

func (d *dockerExecutor) run(ctx context.Context, params *ExecuteParams, workspace string) (*ExecuteResult, error) {
	if params.WorkspaceAccess == WorkspaceNone {
		return d.runCopiedWorkspace(ctx, params, workspace)
	}

	args := []string{"run", "--rm"}
	args = append(args, d.baseArgs(params)...)
	switch params.WorkspaceAccess {
	case WorkspaceReadWrite:
		args = append(args, "-v", fmt.Sprintf("%s:/workspace:rw", workspace))
	default:
		args = append(args, "-v", fmt.Sprintf("%s:/workspace:ro", workspace))
	}
	args = append(args, "-w", "/workspace", dockerImage(params.Language))
	args = append(args, runCommand(params.Language)...)
	return d.runDocker(ctx, args, params.Stdin)
}

func (d *dockerExecutor) baseArgs(params *ExecuteParams) []string {
	args := []string{}
	if !d.networkEnabled {
		args = append(args, "--network", "none")
	}
	args = append(args,
		"--cpus", fmt.Sprintf("%.2f", float64(params.CPULimit)/1000.0),
		"--memory", fmt.Sprintf("%dm", params.MemLimit),
		"--memory-swap", fmt.Sprintf("%dm", params.MemLimit),
		"--pids-limit", "100",
		"--ulimit", "nofile=1024:1024",
	)
	if params.Stdin != "" {
		args = append(args, "-i")
	}
	return args
}

// runCopiedWorkspace handles WorkspaceNone by creating the container
// stopped, copying the scratch directory in, then starting it — docker run
// has no "copy, don't mount" flag, so a create/cp/start sequence is the only
// way to keep the host workspace path off the container's mount table.
func (d *dockerExecutor) runCopiedWorkspace(ctx context.Context, params *ExecuteParams, workspace string) (result *ExecuteResult, runErr error) {
	createArgs := []string{"create"}
	createArgs = append(createArgs, d.baseArgs(params)...)
	createArgs = append(createArgs, "--tmpfs", "/workspace:rw", "-w", "/workspace", dockerImage(params.Language))
	createArgs = append(createArgs, runCommand(params.Language)...)

	var createOut, createErr strings.Builder
	createCmd := exec.CommandContext(ctx, "docker", createArgs...)
	createCmd.Stdout = &createOut
	createCmd.Stderr = &createErr
	if err := createCmd.Run(); err != nil {
		return nil, fmt.Errorf("docker create: %w: %s", err, strings.TrimSpace(createErr.String()))
	}
	containerID := strings.TrimSpace(createOut.String())
	if containerID == "" {
		return nil, errors.New("docker create returned empty container id")
	}
	defer func() {
		_ = exec.CommandContext(context.Background(), "docker", "rm", "-f", containerID).Run()
	}()

	copyCmd := exec.CommandContext(ctx, "docker", "cp", filepath.Join(workspace, "."), containerID+":/workspace")
	var copyErr strings.Builder
	copyCmd.Stderr = &copyErr
	if err := copyCmd.Run(); err != nil {
		return nil, fmt.Errorf("docker cp: %w: %s", err, strings.TrimSpace(copyErr.String()))
	}

	startArgs := []string{"start", "-a"}
	if params.Stdin != "" {
		startArgs = append(startArgs, "-i")
	}
	startArgs = append(startArgs, containerID)
	return d.runDocker(ctx, startArgs, params.Stdin)
}

func (d *dockerExecutor) runDocker(ctx context.Context, args []string, stdin string) (*ExecuteResult, error) {
	cmd := exec.CommandContext(ctx, "docker", args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &ExecuteResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else if ctx.Err() == context.DeadlineExceeded {
			result.Timeout = true
			result.Error = "execution timeout"
		} else {
			result.Error = err.Error()
		}
	}
	return result, nil
}

// FormatResult renders an ExecuteResult the way tool output is shown to the
// model, matching the teacher's plain stdout/stderr/exit-code framing.
func FormatResult(result *ExecuteResult) string {
	var b strings.Builder
	if result.Error != "" {
		fmt.Fprintf(&b, "error: %s\n", result.Error)
	}
	if result.Timeout {
		b.WriteString("execution timed out\n")
	}
	if result.Stdout != "" {
		b.WriteString("stdout:\n")
		b.WriteString(result.Stdout)
		if !strings.HasSuffix(result.Stdout, "\n") {
			b.WriteString("\n")
		}
	}
	if result.Stderr != "" {
		b.WriteString("stderr:\n")
		b.WriteString(result.Stderr)
		if !strings.HasSuffix(result.Stderr, "\n") {
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "exit code: %d", result.ExitCode)
	return b.String()
}
