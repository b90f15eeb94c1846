package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kodokalabs/tetsuo.26/internal/events"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func registerSchedulingTools(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "schedule_cron",
			Description: "Register a 5-field cron trigger that posts a message back to a channel.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":       map[string]any{"type": "string"},
					"expression": map[string]any{"type": "string"},
					"message":    map[string]any{"type": "string"},
					"channel":    map[string]any{"type": "string"},
				},
				"required": []string{"name", "expression", "message"},
			}),
			Risk:     tools.RiskMedium,
			Category: tools.CategoryScheduling,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Name       string `json:"name"`
				Expression string `json:"expression"`
				Message    string `json:"message"`
				Channel    string `json:"channel"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			t, err := deps.Triggers.Create(events.KindCron, args.Name,
				map[string]any{"expression": args.Expression},
				events.Action{Kind: events.ActionMessage, Content: args.Message, Channel: args.Channel})
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("scheduled cron trigger %s", t.ID)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "cancel_cron",
			Description: "Remove a previously scheduled cron trigger by id.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"id": map[string]any{"type": "string"}}, "required": []string{"id"}}),
			Risk:        tools.RiskMedium,
			Category:    tools.CategoryScheduling,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			if err := deps.Triggers.Delete(args.ID); err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: "cancelled " + args.ID}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "edit_heartbeat",
			Description: "Rewrite the heartbeat checklist (a list of {text, done} items).",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"items": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"text": map[string]any{"type": "string"},
								"done": map[string]any{"type": "boolean"},
							},
						},
					},
				},
				"required": []string{"items"},
			}),
			Risk:     tools.RiskLow,
			Category: tools.CategoryScheduling,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Items []events.ChecklistItem `json:"items"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			if err := events.WriteChecklist(deps.HeartbeatPath, args.Items); err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("wrote %d checklist items", len(args.Items))}, nil
		},
	})
}
