package gateway

import "net/http"

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date query parameter required")
		return
	}
	entries, err := s.cfg.Audit.ReadDate(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleAuditDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.cfg.Audit.Dates()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
}
