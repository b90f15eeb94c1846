package builtin

import (
	"context"
	"testing"

	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func TestGetUsageReportsTodayAndBudget(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	res, err := reg.Execute(context.Background(), tools.Call{Name: "get_usage", Input: []byte(`{}`)})
	if err != nil || res.IsError {
		t.Fatalf("get_usage failed: err=%v result=%+v", err, res)
	}
	if !contains(res.Content, "today") || !contains(res.Content, "budget") {
		t.Fatalf("expected today/budget keys in response, got %q", res.Content)
	}
}

func TestSetBudgetUpdatesConfig(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "set_budget",
		Input: []byte(`{"dailyBudget":12.5,"hardStop":true}`),
	})
	if err != nil || res.IsError {
		t.Fatalf("set_budget failed: err=%v result=%+v", err, res)
	}
	cfg := deps.Costs.Config()
	if cfg.DailyBudget != 12.5 || !cfg.HardStop {
		t.Fatalf("expected updated budget config, got %+v", cfg)
	}
}

func TestGetUsageHistoryDefaultsToSevenDays(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	res, err := reg.Execute(context.Background(), tools.Call{Name: "get_usage_history", Input: []byte(`{}`)})
	if err != nil || res.IsError {
		t.Fatalf("get_usage_history failed: err=%v result=%+v", err, res)
	}
	if res.Content == "" {
		t.Fatalf("expected non-empty history payload")
	}
}
