package llm

// Tier is the abstract model label the orchestrator routes subtasks to.
type Tier string

const (
	TierFast      Tier = "fast"
	TierBalanced  Tier = "balanced"
	TierReasoning Tier = "reasoning"
	TierLocal     Tier = "local"
)

// Route binds a Tier to a concrete provider, model, and price.
type Route struct {
	Tier     Tier
	Provider Provider
	Model    string
	Price    PriceCoefficients
}

// Router holds the tier -> Route table loaded at init, per §4.2.
type Router struct {
	routes map[Tier]Route
}

// NewRouter builds a Router from the tier table assembled at startup.
func NewRouter(routes map[Tier]Route) *Router {
	return &Router{routes: routes}
}

// Route returns the configured route for a tier, and whether it exists.
func (r *Router) Route(tier Tier) (Route, bool) {
	route, ok := r.routes[tier]
	return route, ok
}

// HasLocal reports whether a local (offline, zero-cost) tier is configured.
func (r *Router) HasLocal() bool {
	_, ok := r.routes[TierLocal]
	return ok
}

// Cheapest returns the lowest-estimated-cost non-local route, used when
// remaining budget is tight. Local is excluded because it signals an
// offline runtime reserved for privacy-sensitive subtasks, not a general
// cost-saving fallback.
func (r *Router) Cheapest() (Route, bool) {
	var best Route
	found := false
	for tier, route := range r.routes {
		if tier == TierLocal {
			continue
		}
		cost := route.Price.InputPerMillion + route.Price.OutputPerMillion
		bestCost := best.Price.InputPerMillion + best.Price.OutputPerMillion
		if !found || cost < bestCost {
			best = route
			found = true
		}
	}
	return best, found
}

// Routes returns a snapshot of the tier -> Route table, for the admin API's
// agent/route summary.
func (r *Router) Routes() map[Tier]Route {
	out := make(map[Tier]Route, len(r.routes))
	for tier, route := range r.routes {
		out[tier] = route
	}
	return out
}

// TierForComplexity maps a 1-10 complexity score to a tier per §4.2: 1-3
// fast, 4-7 balanced, 8-10 reasoning.
func TierForComplexity(complexity int) Tier {
	switch {
	case complexity <= 3:
		return TierFast
	case complexity <= 7:
		return TierBalanced
	default:
		return TierReasoning
	}
}
