package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kodokalabs/tetsuo.26/internal/costs"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func registerCostTools(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "get_usage",
			Description: "Report today's token usage, estimated cost, and the configured daily budget.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{}}),
			Risk:        tools.RiskLow,
			Category:    tools.CategoryCost,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			today := deps.Costs.Today()
			cfg := deps.Costs.Config()
			data, _ := json.Marshal(map[string]any{"today": today, "budget": cfg})
			return tools.Result{Content: string(data)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "set_budget",
			Description: "Set the daily dollar budget and whether to hard-stop LLM calls once it is exceeded.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"dailyBudget": map[string]any{"type": "number"},
					"hardStop":    map[string]any{"type": "boolean"},
				},
				"required": []string{"dailyBudget"},
			}),
			Risk:     tools.RiskMedium,
			Category: tools.CategoryCost,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				DailyBudget float64 `json:"dailyBudget"`
				HardStop    bool    `json:"hardStop"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			if err := deps.Costs.SetConfig(costs.BudgetConfig{DailyBudget: args.DailyBudget, HardStop: args.HardStop}); err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("budget set to $%.2f/day (hardStop=%v)", args.DailyBudget, args.HardStop)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "get_usage_history",
			Description: "Return the last N days of daily usage ledgers.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"days": map[string]any{"type": "integer"}}}),
			Risk:        tools.RiskLow,
			Category:    tools.CategoryCost,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Days int `json:"days"`
			}
			_ = json.Unmarshal(call.Input, &args)
			if args.Days <= 0 {
				args.Days = 7
			}
			data, _ := json.Marshal(deps.Costs.History(args.Days))
			return tools.Result{Content: string(data)}, nil
		},
	})
}
