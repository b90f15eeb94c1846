package orchestrator

import "github.com/kodokalabs/tetsuo.26/internal/llm"

// lowBudgetThreshold is the remaining-budget floor below which subtasks
// fall back to the cheapest available non-local tier, per §4.2.
const lowBudgetThreshold = 0.10

// routeForSubtask applies the routing precedence from §4.2: privacy first,
// then tight remaining budget, then an explicit tier request, then
// complexity-derived tier.
func (o *Orchestrator) routeForSubtask(st PlannedSubtask) (llm.Route, string) {
	if st.RequiresPrivacy {
		if route, ok := o.Router.Route(llm.TierLocal); ok {
			return route, ""
		}
		route, ok := o.Router.Route(llm.TierBalanced)
		return route, "requiresPrivacy set but no local tier configured; falling back to balanced"
	}

	if o.Costs != nil {
		cfg := o.Costs.Config()
		if cfg.DailyBudget > 0 {
			remaining := cfg.DailyBudget - o.Costs.Today().EstimatedCost
			if remaining < lowBudgetThreshold {
				if route, ok := o.Router.Cheapest(); ok {
					return route, ""
				}
			}
		}
	}

	if st.ModelTier != "" {
		if route, ok := o.Router.Route(llm.Tier(st.ModelTier)); ok {
			return route, ""
		}
	}

	route, _ := o.Router.Route(llm.TierForComplexity(st.Complexity))
	return route, ""
}
