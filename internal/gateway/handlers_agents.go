package gateway

import (
	"net/http"

	"github.com/kodokalabs/tetsuo.26/internal/tasks"
)

// handleAgents returns the currently-running subtask "sub-agents" alongside
// the configured tier -> route table, per the admin API's agent snapshot.
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	running := s.cfg.Tasks.ListByStatus(tasks.StatusRunning)
	subagents := make([]map[string]any, 0, len(running))
	for _, t := range running {
		if t.ParentID == "" {
			continue
		}
		subagents = append(subagents, map[string]any{
			"id":       t.ID,
			"parentId": t.ParentID,
			"title":    t.Title,
			"progress": t.Progress,
			"provider": t.Provider,
			"model":    t.Model,
		})
	}

	routes := make(map[string]map[string]any)
	for tier, route := range s.cfg.Router.Routes() {
		name := ""
		if route.Provider != nil {
			name = route.Provider.Name()
		}
		routes[string(tier)] = map[string]any{
			"provider": name,
			"model":    route.Model,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subagents": subagents,
		"routes":    routes,
	})
}
