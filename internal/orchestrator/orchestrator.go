package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/kodokalabs/tetsuo.26/internal/approval"
	"github.com/kodokalabs/tetsuo.26/internal/costs"
	"github.com/kodokalabs/tetsuo.26/internal/llm"
	"github.com/kodokalabs/tetsuo.26/internal/settings"
	"github.com/kodokalabs/tetsuo.26/internal/tasks"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

// Orchestrator decomposes a request into a dependency-graphed plan and runs
// it to completion in the background, satisfying the builtin.OrchestratorFacade
// contract the create_task tool calls into.
type Orchestrator struct {
	Router    *llm.Router
	Tasks     *tasks.Store
	Tools     *tools.Registry
	Approvals *approval.Broker
	Costs     *costs.Manager
	Settings  *settings.Store

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds an Orchestrator bound to the shared subsystem singletons. The
// returned Orchestrator owns a background context that Shutdown cancels,
// abandoning any plan still executing; the affected tasks recover to
// "paused" the next time the task store starts up, per §4.3.
func New(router *llm.Router, taskStore *tasks.Store, registry *tools.Registry, approvals *approval.Broker, costManager *costs.Manager, settingsStore *settings.Store) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		Router:    router,
		Tasks:     taskStore,
		Tools:     registry,
		Approvals: approvals,
		Costs:     costManager,
		Settings:  settingsStore,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Shutdown cancels every in-flight plan.
func (o *Orchestrator) Shutdown() { o.cancel() }

// Plan creates the parent tracking task, plans it asynchronously, and
// returns the task id immediately: the caller (the create_task tool) polls
// get_task for progress rather than blocking on the whole plan.
func (o *Orchestrator) Plan(description, channel, user string) (string, error) {
	title := description
	if len(title) > 80 {
		title = title[:80]
	}
	parent, err := o.Tasks.Create(title, description, tasks.PriorityNormal, tasks.Source{Channel: channel, User: user})
	if err != nil {
		return "", fmt.Errorf("create parent task: %w", err)
	}
	go o.execute(parent, description)
	return parent.ID, nil
}

func (o *Orchestrator) execute(parent *tasks.Task, description string) {
	ctx := o.ctx
	if _, err := o.Tasks.UpdateStatus(parent.ID, tasks.StatusRunning, nil, "", ""); err != nil {
		return
	}

	plannedTasks := o.plan(ctx, description)
	total := len(plannedTasks.Subtasks)
	if total == 0 {
		_, _ = o.Tasks.UpdateStatus(parent.ID, tasks.StatusFailed, nil, "", "planner produced no subtasks")
		return
	}

	groups := map[string][]PlannedSubtask{}
	var sequential []PlannedSubtask
	for _, st := range plannedTasks.Subtasks {
		if st.ParallelGroup == "" {
			sequential = append(sequential, st)
		} else {
			groups[st.ParallelGroup] = append(groups[st.ParallelGroup], st)
		}
	}
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	knownTitles := make(map[string]bool, total)
	for _, st := range plannedTasks.Subtasks {
		knownTitles[st.Title] = true
	}

	var (
		mu             sync.Mutex
		cond           = sync.NewCond(&mu)
		outcomes       []subtaskOutcome
		completed      int
		completedTitle = map[string]bool{}
	)
	go func() {
		<-ctx.Done()
		mu.Lock()
		cond.Broadcast()
		mu.Unlock()
	}()
	updateProgress := func() {
		pct := completed * 90 / total
		if pct > 90 {
			pct = 90
		}
		_, _ = o.Tasks.UpdateStatus(parent.ID, tasks.StatusRunning, &pct, "", "")
	}
	priorResultStrings := func() []string {
		mu.Lock()
		defer mu.Unlock()
		out := make([]string, len(outcomes))
		for i, o := range outcomes {
			out[i] = fmt.Sprintf("%s: %s", o.subtask.Title, o.result)
		}
		return out
	}
	// awaitDependencies blocks a subtask until every title in its dependsOn
	// contract (planner.go) has completed. A dependency the planner never
	// produced a matching title for can never be satisfied; that case logs
	// a warning and the subtask proceeds unblocked rather than stalling the
	// plan forever, per the dependency baseline in §4.2.
	awaitDependencies := func(st PlannedSubtask) {
		if len(st.DependsOn) == 0 {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		for _, dep := range st.DependsOn {
			if !knownTitles[dep] {
				slog.Warn("orchestrator: subtask depends on an unrecognized title, proceeding without waiting",
					"subtask", st.Title, "dependsOn", dep)
			}
		}
		for ctx.Err() == nil {
			ready := true
			for _, dep := range st.DependsOn {
				if knownTitles[dep] && !completedTitle[dep] {
					ready = false
					break
				}
			}
			if ready {
				return
			}
			cond.Wait()
		}
	}

	runSubtask := func(st PlannedSubtask) {
		awaitDependencies(st)
		child, err := o.Tasks.CreateSubtask(st.Title, st.Description, tasks.PriorityNormal, parent.Source, parent.ID)
		if err != nil {
			mu.Lock()
			outcomes = append(outcomes, subtaskOutcome{subtask: st, err: err})
			completed++
			completedTitle[st.Title] = true
			cond.Broadcast()
			updateProgress()
			mu.Unlock()
			return
		}
		_, _ = o.Tasks.UpdateStatus(child.ID, tasks.StatusRunning, nil, "", "")

		result, err := o.runWorkerTurn(ctx, st, child, parent, description, priorResultStrings())
		if err != nil {
			_, _ = o.Tasks.UpdateStatus(child.ID, tasks.StatusFailed, nil, "", err.Error())
		} else {
			full := 100
			_, _ = o.Tasks.UpdateStatus(child.ID, tasks.StatusCompleted, &full, result, "")
		}

		mu.Lock()
		outcomes = append(outcomes, subtaskOutcome{subtask: st, taskID: child.ID, result: result, err: err})
		completed++
		completedTitle[st.Title] = true
		cond.Broadcast()
		updateProgress()
		mu.Unlock()
	}

	for _, label := range labels {
		var wg sync.WaitGroup
		for _, st := range groups[label] {
			wg.Add(1)
			go func(st PlannedSubtask) {
				defer wg.Done()
				runSubtask(st)
			}(st)
		}
		wg.Wait()
	}
	for _, st := range sequential {
		runSubtask(st)
	}

	final, err := o.synthesize(ctx, description, outcomes)
	if err != nil {
		_, _ = o.Tasks.UpdateStatus(parent.ID, tasks.StatusFailed, nil, "", err.Error())
		return
	}
	fullProgress := 100
	_, _ = o.Tasks.UpdateStatus(parent.ID, tasks.StatusCompleted, &fullProgress, final, "")
}
