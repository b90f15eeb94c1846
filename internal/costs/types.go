// Package costs implements the DailyUsage ledger and the budget/hard-stop
// cost manager the session loop consults before every LLM call.
package costs

// ModelBreakdown accumulates usage for a single "provider:model" pair within
// one DailyUsage record.
type ModelBreakdown struct {
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	Cost         float64 `json:"cost"`
	CallCount    int64   `json:"callCount"`
}

// DailyUsage is the cumulative usage ledger for one calendar date.
type DailyUsage struct {
	Date         string                     `json:"date"` // YYYY-MM-DD
	InputTokens  int64                      `json:"inputTokens"`
	OutputTokens int64                      `json:"outputTokens"`
	EstimatedCost float64                   `json:"estimatedCost"`
	CallCount    int64                      `json:"callCount"`
	ByModel      map[string]*ModelBreakdown `json:"byModel"`
}

func newDailyUsage(date string) *DailyUsage {
	return &DailyUsage{Date: date, ByModel: map[string]*ModelBreakdown{}}
}

// add records one LLM call's usage into the ledger, maintaining the
// invariant that CallCount equals the sum of per-model call counts.
func (d *DailyUsage) add(provider, model string, inputTokens, outputTokens int64, cost float64) {
	d.InputTokens += inputTokens
	d.OutputTokens += outputTokens
	d.EstimatedCost += cost
	d.CallCount++

	key := provider + ":" + model
	mb, ok := d.ByModel[key]
	if !ok {
		mb = &ModelBreakdown{}
		d.ByModel[key] = mb
	}
	mb.InputTokens += inputTokens
	mb.OutputTokens += outputTokens
	mb.Cost += cost
	mb.CallCount++
}

// BudgetConfig is the persisted cost-config.json document.
type BudgetConfig struct {
	DailyBudget float64 `json:"dailyBudget"`
	HardStop    bool    `json:"hardStop"`
}
