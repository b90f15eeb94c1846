// Package builtin implements every built-in tool named in the tool
// registry's contract: filesystem, shell, network, browser, memory,
// scheduling, task/approval/orchestrator wrappers, cost tools, trigger
// tools, guarded integrations, and guarded system control.
package builtin

import (
	"context"
	"time"

	"github.com/kodokalabs/tetsuo.26/internal/approval"
	"github.com/kodokalabs/tetsuo.26/internal/costs"
	"github.com/kodokalabs/tetsuo.26/internal/events"
	"github.com/kodokalabs/tetsuo.26/internal/memory"
	"github.com/kodokalabs/tetsuo.26/internal/sandbox"
	"github.com/kodokalabs/tetsuo.26/internal/security"
	"github.com/kodokalabs/tetsuo.26/internal/settings"
	"github.com/kodokalabs/tetsuo.26/internal/tasks"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

// OrchestratorFacade is the thin slice of the orchestrator the create_task
// tool calls through for Deps.Orchestrator, kept as an interface so this
// package's Deps type does not have to name the concrete orchestrator
// struct (the orchestrator's worker turns call back into a tools.Registry,
// and depending on the concrete type here would risk a cycle).
type OrchestratorFacade interface {
	Plan(description, channel, user string) (taskID string, err error)
}

// SandboxExecutor is the slice of sandbox.Executor run_shell/run_code call
// through, kept as an interface so tests can substitute a fake rather than
// needing a real docker binary.
type SandboxExecutor interface {
	Execute(ctx context.Context, params sandbox.ExecuteParams) (*sandbox.ExecuteResult, error)
}

// Deps bundles every collaborator the built-in tools call through. All
// fields are required except Orchestrator, Notes, and the integration
// credentials, which degrade to a disabled-tool response when absent.
type Deps struct {
	Jail          *security.PathJail
	Tasks         *tasks.Store
	Approvals     *approval.Broker
	Costs         *costs.Manager
	Threads       *memory.Store
	Notes         *memory.NoteStore
	Triggers      *events.Registry
	Settings      *settings.Store
	Orchestrator  OrchestratorFacade
	Sandbox       SandboxExecutor
	HeartbeatPath string
	Now           func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RegisterAll registers every built-in tool against reg.
func RegisterAll(reg *tools.Registry, deps *Deps) {
	if deps.Sandbox == nil {
		deps.Sandbox = sandbox.NewExecutor(sandbox.WithWorkspaceRoot(deps.Jail.Root))
	}
	registerFileTools(reg, deps)
	registerShellTool(reg, deps)
	registerRunCodeTool(reg, deps)
	registerWebTools(reg, deps)
	registerBrowserTool(reg, deps)
	registerMemoryTools(reg, deps)
	registerSchedulingTools(reg, deps)
	registerTaskTools(reg, deps)
	registerApprovalTools(reg, deps)
	registerOrchestratorTools(reg, deps)
	registerCostTools(reg, deps)
	registerTriggerTools(reg, deps)
	registerIntegrationTools(reg, deps)
	registerSystemTools(reg, deps)
}
