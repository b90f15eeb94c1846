package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kodokalabs/tetsuo.26/internal/events"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func registerTriggerTools(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "list_triggers",
			Description: "List all registered triggers (file_watch, webhook, cron, calendar, email_watch) and their fire counts.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{}}),
			Risk:        tools.RiskLow,
			Category:    tools.CategoryTrigger,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			data, _ := json.Marshal(deps.Triggers.All())
			return tools.Result{Content: string(data)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name: "create_trigger",
			Description: "Register a new trigger of a given kind (file_watch, webhook, cron, calendar, email_watch) " +
				"with a kind-specific config and an action to fire (post a message, or create a task).",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"kind":            map[string]any{"type": "string"},
					"name":            map[string]any{"type": "string"},
					"config":          map[string]any{"type": "object"},
					"actionKind":      map[string]any{"type": "string"},
					"actionContent":   map[string]any{"type": "string"},
					"actionChannel":   map[string]any{"type": "string"},
				},
				"required": []string{"kind", "name", "actionKind", "actionContent"},
			}),
			Risk:     tools.RiskMedium,
			Category: tools.CategoryTrigger,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Kind          string         `json:"kind"`
				Name          string         `json:"name"`
				Config        map[string]any `json:"config"`
				ActionKind    string         `json:"actionKind"`
				ActionContent string         `json:"actionContent"`
				ActionChannel string         `json:"actionChannel"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			t, err := deps.Triggers.Create(events.Kind(args.Kind), args.Name, args.Config,
				events.Action{Kind: events.ActionKind(args.ActionKind), Content: args.ActionContent, Channel: args.ActionChannel, User: call.User})
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("created trigger %s (%s)", t.ID, t.Type)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "toggle_trigger",
			Description: "Enable or disable a trigger by id, flipping its current state.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"id": map[string]any{"type": "string"}}, "required": []string{"id"}}),
			Risk:        tools.RiskLow,
			Category:    tools.CategoryTrigger,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			t, err := deps.Triggers.Toggle(args.ID)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("trigger %s enabled=%v", t.ID, t.Enabled)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "delete_trigger",
			Description: "Permanently remove a trigger by id.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"id": map[string]any{"type": "string"}}, "required": []string{"id"}}),
			Risk:        tools.RiskMedium,
			Category:    tools.CategoryTrigger,
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
			return tools.Result{Content: "deleted " + args.ID}, nil
		},
	})
}
