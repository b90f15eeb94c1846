package llm

import (
	"context"
	"testing"
)

// stubProvider is a Provider identified only by its name.
type stubProvider string

func (p stubProvider) Name() string { return string(p) }
func (p stubProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	return &Response{}, nil
}

func sampleRoutes() map[Tier]Route {
	return map[Tier]Route{
		TierFast: {
			Tier: TierFast, Provider: stubProvider("anthropic"), Model: "claude-haiku",
			Price: PriceCoefficients{InputPerMillion: 0.8, OutputPerMillion: 4},
		},
		TierBalanced: {
			Tier: TierBalanced, Provider: stubProvider("anthropic"), Model: "claude-sonnet",
			Price: PriceCoefficients{InputPerMillion: 3, OutputPerMillion: 15},
		},
		TierReasoning: {
			Tier: TierReasoning, Provider: stubProvider("anthropic"), Model: "claude-opus",
			Price: PriceCoefficients{InputPerMillion: 15, OutputPerMillion: 75},
		},
		TierLocal: {
			Tier: TierLocal, Provider: stubProvider("ollama"), Model: "llama3",
			Price: PriceCoefficients{InputPerMillion: 0, OutputPerMillion: 0},
		},
	}
}

func TestRouteReturnsConfiguredTier(t *testing.T) {
	r := NewRouter(sampleRoutes())
	route, ok := r.Route(TierBalanced)
	if !ok {
		t.Fatalf("expected TierBalanced to be configured")
	}
	if route.Model != "claude-sonnet" {
		t.Fatalf("expected claude-sonnet, got %q", route.Model)
	}
}

func TestRouteMissingTierReturnsFalse(t *testing.T) {
	r := NewRouter(map[Tier]Route{TierFast: sampleRoutes()[TierFast]})
	if _, ok := r.Route(TierReasoning); ok {
		t.Fatalf("expected TierReasoning to be absent")
	}
}

func TestHasLocalTrueWhenConfigured(t *testing.T) {
	r := NewRouter(sampleRoutes())
	if !r.HasLocal() {
		t.Fatalf("expected HasLocal() to be true")
	}
}

func TestHasLocalFalseWhenAbsent(t *testing.T) {
	routes := sampleRoutes()
	delete(routes, TierLocal)
	r := NewRouter(routes)
	if r.HasLocal() {
		t.Fatalf("expected HasLocal() to be false")
	}
}

func TestCheapestExcludesLocalAndPicksLowestCombinedPrice(t *testing.T) {
	r := NewRouter(sampleRoutes())
	route, ok := r.Cheapest()
	if !ok {
		t.Fatalf("expected a cheapest route")
	}
	if route.Tier == TierLocal {
		t.Fatalf("expected TierLocal to be excluded from Cheapest()")
	}
	if route.Model != "claude-haiku" {
		t.Fatalf("expected claude-haiku to be cheapest, got %q", route.Model)
	}
}

func TestCheapestWithOnlyLocalConfiguredReturnsFalse(t *testing.T) {
	r := NewRouter(map[Tier]Route{TierLocal: sampleRoutes()[TierLocal]})
	if _, ok := r.Cheapest(); ok {
		t.Fatalf("expected no cheapest route when only TierLocal is configured")
	}
}

func TestCheapestWithNoRoutesReturnsFalse(t *testing.T) {
	r := NewRouter(map[Tier]Route{})
	if _, ok := r.Cheapest(); ok {
		t.Fatalf("expected no cheapest route for an empty router")
	}
}

func TestRoutesReturnsIndependentSnapshot(t *testing.T) {
	r := NewRouter(sampleRoutes())
	snapshot := r.Routes()
	snapshot[TierFast] = Route{Tier: TierFast, Provider: stubProvider("mutated"), Model: "mutated"}

	route, ok := r.Route(TierFast)
	if !ok {
		t.Fatalf("expected TierFast to remain configured")
	}
	if route.Provider.Name() == "mutated" {
		t.Fatalf("expected Routes() snapshot mutation not to affect router state")
	}
}

func TestTierForComplexityBuckets(t *testing.T) {
	cases := []struct {
		complexity int
		want       Tier
	}{
		{1, TierFast},
		{3, TierFast},
		{4, TierBalanced},
		{7, TierBalanced},
		{8, TierReasoning},
		{10, TierReasoning},
	}
	for _, tc := range cases {
		if got := TierForComplexity(tc.complexity); got != tc.want {
			t.Fatalf("TierForComplexity(%d) = %q, want %q", tc.complexity, got, tc.want)
		}
	}
}
