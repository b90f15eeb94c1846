package gateway

import (
	"net/http"

	"github.com/kodokalabs/tetsuo.26/internal/events"
)

func (s *Server) handleListTriggers(w http.ResponseWriter, r *http.Request) {
	all := s.cfg.Triggers.All()
	out := make([]map[string]any, 0, len(all))
	for _, t := range all {
		out = append(out, redactTrigger(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"triggers": out})
}

// redactTrigger drops the webhook shared secret from a trigger's config
// before it ever reaches the admin API response.
func redactTrigger(t *events.Trigger) map[string]any {
	config := make(map[string]any, len(t.Config))
	for k, v := range t.Config {
		if k == "secret" {
			config[k] = "(set)"
			continue
		}
		config[k] = v
	}
	return map[string]any{
		"id":            t.ID,
		"type":          t.Type,
		"name":          t.Name,
		"enabled":       t.Enabled,
		"config":        config,
		"action":        t.Action,
		"lastTriggered": t.LastTriggered,
		"fireCount":     t.FireCount,
	}
}

func (s *Server) handleToggleTrigger(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := s.cfg.Triggers.Toggle(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, redactTrigger(t))
}

func (s *Server) handleDeleteTrigger(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.cfg.Triggers.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
