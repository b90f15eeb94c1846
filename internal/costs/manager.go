package costs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// retainedDays is how many DailyUsage records costs.json keeps, per §6.
const retainedDays = 90

// Manager is the process-global cost accumulator: the single source of
// truth for today's usage and the budget hard-stop check the session loop
// calls before every LLM round trip.
type Manager struct {
	mu       sync.Mutex
	path     string
	configPath string
	byDate   map[string]*DailyUsage
	config   BudgetConfig
	now      func() time.Time
}

// NewManager loads costs.json and cost-config.json from workspace, creating
// both with empty/default contents if absent.
func NewManager(workspace string) (*Manager, error) {
	m := &Manager{
		path:       filepath.Join(workspace, "costs.json"),
		configPath: filepath.Join(workspace, "cost-config.json"),
		byDate:     map[string]*DailyUsage{},
		now:        time.Now,
	}
	if err := m.loadUsage(); err != nil {
		return nil, err
	}
	if err := m.loadConfig(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) loadUsage() error {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read costs.json: %w", err)
	}
	var records []*DailyUsage
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse costs.json: %w", err)
	}
	for _, r := range records {
		if r.ByModel == nil {
			r.ByModel = map[string]*ModelBreakdown{}
		}
		m.byDate[r.Date] = r
	}
	return nil
}

func (m *Manager) loadConfig() error {
	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		m.config = BudgetConfig{DailyBudget: 0, HardStop: false}
		return m.persistConfigLocked()
	}
	if err != nil {
		return fmt.Errorf("read cost-config.json: %w", err)
	}
	return json.Unmarshal(data, &m.config)
}

func (m *Manager) todayKey() string {
	return m.now().UTC().Format("2006-01-02")
}

// TrackUsage is the monotonic accounting call: every LLM response adds to
// today's usage before the caller observes the response (§5 ordering
// guarantee).
func (m *Manager) TrackUsage(provider, model string, inputTokens, outputTokens int64, cost float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	date := m.todayKey()
	d, ok := m.byDate[date]
	if !ok {
		d = newDailyUsage(date)
		m.byDate[date] = d
	}
	d.add(provider, model, inputTokens, outputTokens, cost)
	m.prune()
	return m.persistUsageLocked()
}

// prune drops usage records older than retainedDays, keyed lexicographically
// since dates are YYYY-MM-DD.
func (m *Manager) prune() {
	if len(m.byDate) <= retainedDays {
		return
	}
	dates := make([]string, 0, len(m.byDate))
	for d := range m.byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates[:len(dates)-retainedDays] {
		delete(m.byDate, d)
	}
}

// Today returns a copy of today's usage record.
func (m *Manager) Today() DailyUsage {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byDate[m.todayKey()]
	if !ok {
		return *newDailyUsage(m.todayKey())
	}
	return *d
}

// History returns the last n DailyUsage records, most recent last.
func (m *Manager) History(n int) []DailyUsage {
	m.mu.Lock()
	defer m.mu.Unlock()
	dates := make([]string, 0, len(m.byDate))
	for d := range m.byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if n > 0 && len(dates) > n {
		dates = dates[len(dates)-n:]
	}
	out := make([]DailyUsage, 0, len(dates))
	for _, d := range dates {
		out = append(out, *m.byDate[d])
	}
	return out
}

// CanMakeCall reports whether a new LLM call is permitted under the current
// budget. It is false only when hard-stop is enabled and today's cost has
// already reached the daily budget.
func (m *Manager) CanMakeCall() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.config.HardStop || m.config.DailyBudget <= 0 {
		return true
	}
	d, ok := m.byDate[m.todayKey()]
	if !ok {
		return true
	}
	return d.EstimatedCost < m.config.DailyBudget
}

// Config returns the current budget configuration.
func (m *Manager) Config() BudgetConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// SetConfig updates and persists the budget configuration.
func (m *Manager) SetConfig(cfg BudgetConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = cfg
	return m.persistConfigLocked()
}

func (m *Manager) persistUsageLocked() error {
	records := make([]*DailyUsage, 0, len(m.byDate))
	dates := make([]string, 0, len(m.byDate))
	for d := range m.byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		records = append(records, m.byDate[d])
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal costs: %w", err)
	}
	return writeAtomic(m.path, data)
}

func (m *Manager) persistConfigLocked() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cost config: %w", err)
	}
	return writeAtomic(m.configPath, data)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
