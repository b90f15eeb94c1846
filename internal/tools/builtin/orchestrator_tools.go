package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kodokalabs/tetsuo.26/internal/orchestrator"
	"github.com/kodokalabs/tetsuo.26/internal/tasks"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func registerOrchestratorTools(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name: "create_task",
			Description: "Create a tracked task from a goal. Requests that look multi-step are automatically " +
				"handed to the orchestrator, which plans them into parallel subtasks routed across model tiers; " +
				"set orchestrate=true to force that path regardless of the heuristic. Returns the tracking task id.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"description": map[string]any{"type": "string"},
					"title":       map[string]any{"type": "string"},
					"orchestrate": map[string]any{"type": "boolean"},
				},
				"required": []string{"description"},
			}),
			Risk:     tools.RiskMedium,
			Category: tools.CategoryTask,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Description string `json:"description"`
				Title       string `json:"title"`
				Orchestrate bool   `json:"orchestrate"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}

			if args.Orchestrate || orchestrator.ShouldOrchestrate(args.Description) {
				if deps.Orchestrator == nil {
					return tools.Result{Content: "Error: orchestrator is not available", IsError: true}, nil
				}
				taskID, err := deps.Orchestrator.Plan(args.Description, call.Channel, call.User)
				if err != nil {
					return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
				}
				return tools.Result{Content: fmt.Sprintf("orchestrating as task %s", taskID)}, nil
			}

			title := args.Title
			if title == "" {
				title = args.Description
				if len(title) > 80 {
					title = title[:80]
				}
			}
			t, err := deps.Tasks.Create(title, args.Description, tasks.PriorityNormal, tasks.Source{Channel: call.Channel, User: call.User})
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("created task %s", t.ID)}, nil
		},
	})
}
