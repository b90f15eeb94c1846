package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kodokalabs/tetsuo.26/internal/approval"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func registerApprovalTools(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "list_pending_approvals",
			Description: "List approval requests still awaiting a human decision for a user.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"user": map[string]any{"type": "string"}}}),
			Risk:        tools.RiskLow,
			Category:    tools.CategoryTask,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				User string `json:"user"`
			}
			_ = json.Unmarshal(call.Input, &args)
			user := args.User
			if user == "" {
				user = call.User
			}
			list := deps.Approvals.ListPendingForUser(user)
			data, _ := json.Marshal(list)
			return tools.Result{Content: string(data)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "resolve_approval",
			Description: "Approve or reject a pending approval request by id (or unambiguous id prefix).",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":       map[string]any{"type": "string"},
					"approved": map[string]any{"type": "boolean"},
				},
				"required": []string{"id", "approved"},
			}),
			Risk:     tools.RiskMedium,
			Category: tools.CategoryTask,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				ID       string `json:"id"`
				Approved bool   `json:"approved"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			id := args.ID
			if req, ok := deps.Approvals.FindPendingByIDPrefix(id); ok {
				id = req.ID
			}
			req, err := deps.Approvals.Resolve(id, args.Approved, call.User)
			if err != nil {
				if err == approval.ErrAlreadyPending {
					return tools.Result{Content: "Error: a decision has already been recorded for this request", IsError: true}, nil
				}
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("request %s is now %s", req.ID, req.Status)}, nil
		},
	})
}
