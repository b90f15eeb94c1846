package gateway

import (
	"net/http"
	"strconv"

	"github.com/kodokalabs/tetsuo.26/internal/costs"
)

func (s *Server) handleCostsToday(w http.ResponseWriter, r *http.Request) {
	today := s.cfg.Costs.Today()
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SetDailyCost(today.EstimatedCost)
	}
	writeJSON(w, http.StatusOK, today)
}

func (s *Server) handleCostsHistory(w http.ResponseWriter, r *http.Request) {
	n := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": s.cfg.Costs.History(n)})
}

func (s *Server) handleCostsConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Costs.Config())
}

func (s *Server) handleCostsConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var cfg costs.BudgetConfig
	if err := decodeJSON(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := s.cfg.Costs.SetConfig(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Costs.Config())
}
