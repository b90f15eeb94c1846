package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kodokalabs/tetsuo.26/internal/tasks"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func registerTaskTools(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "get_task",
			Description: "Fetch a task by id, including its steps, progress, and usage.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"id": map[string]any{"type": "string"}}, "required": []string{"id"}}),
			Risk:        tools.RiskLow,
			Category:    tools.CategoryTask,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			t, ok := deps.Tasks.Get(args.ID)
			if !ok {
				return tools.Result{Content: "Error: task not found: " + args.ID, IsError: true}, nil
			}
			data, _ := json.Marshal(t)
			return tools.Result{Content: string(data)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "update_task_status",
			Description: "Transition a task's status, optionally setting progress, result, and error in the same call.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":       map[string]any{"type": "string"},
					"status":   map[string]any{"type": "string"},
					"progress": map[string]any{"type": "integer"},
					"result":   map[string]any{"type": "string"},
					"error":    map[string]any{"type": "string"},
				},
				"required": []string{"id", "status"},
			}),
			Risk:     tools.RiskLow,
			Category: tools.CategoryTask,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				ID       string `json:"id"`
				Status   string `json:"status"`
				Progress *int   `json:"progress"`
				Result   string `json:"result"`
				Error    string `json:"error"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			t, err := deps.Tasks.UpdateStatus(args.ID, tasks.Status(args.Status), args.Progress, args.Result, args.Error)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("task %s now %s (%d%%)", t.ID, t.Status, t.Progress)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "list_tasks",
			Description: "List the most recently created tasks, optionally filtered by status.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"status": map[string]any{"type": "string"},
					"limit":  map[string]any{"type": "integer"},
				},
			}),
			Risk:     tools.RiskLow,
			Category: tools.CategoryTask,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Status string `json:"status"`
				Limit  int    `json:"limit"`
			}
			_ = json.Unmarshal(call.Input, &args)
			if args.Limit <= 0 {
				args.Limit = 20
			}
			var list []*tasks.Task
			if args.Status != "" {
				list = deps.Tasks.ListByStatus(tasks.Status(args.Status))
				if len(list) > args.Limit {
					list = list[:args.Limit]
				}
			} else {
				list = deps.Tasks.ListRecent(args.Limit)
			}
			data, _ := json.Marshal(list)
			return tools.Result{Content: string(data)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "cancel_task",
			Description: "Cancel a task by id.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"id": map[string]any{"type": "string"}}, "required": []string{"id"}}),
			Risk:        tools.RiskMedium,
			Category:    tools.CategoryTask,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			t, err := deps.Tasks.UpdateStatus(args.ID, tasks.StatusCancelled, nil, "", "")
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("task %s cancelled", t.ID)}, nil
		},
	})
}
