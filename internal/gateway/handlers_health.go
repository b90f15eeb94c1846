package gateway

import (
	"net/http"
	"os"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":   s.cfg.AgentName,
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	settings := s.cfg.Settings.Get()
	today := s.cfg.Costs.Today()

	route, _ := s.cfg.Router.Route("balanced")
	provider, model := "", ""
	if route.Provider != nil {
		provider = route.Provider.Name()
		model = route.Model
	}

	skills := s.listSkills()
	memoryCount := 0
	if s.cfg.Memory != nil {
		memoryCount = len(s.cfg.Memory.All())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":          s.cfg.AgentName,
		"uptime":        time.Since(s.startTime).String(),
		"provider":      provider,
		"model":         model,
		"autonomyLevel": settings.AutonomyLevel,
		"skills":        skills,
		"memoryCount":   memoryCount,
		"usageToday":    today,
	})
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"skills": s.listSkills()})
}

// listSkills reads the SKILL markdown files under <workspace>/skills, an
// external collaborator this gateway merely enumerates without parsing.
func (s *Server) listSkills() []string {
	dir := s.cfg.Workspace + "/skills"
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Memory == nil {
		writeJSON(w, http.StatusOK, map[string]any{"threads": []any{}})
		return
	}
	threads := s.cfg.Memory.All()
	type summary struct {
		Channel   string `json:"channel"`
		User      string `json:"user"`
		TurnCount int    `json:"turnCount"`
		Summary   string `json:"summary,omitempty"`
	}
	out := make([]summary, 0, len(threads))
	for _, t := range threads {
		out = append(out, summary{Channel: t.Channel, User: t.User, TurnCount: len(t.Turns), Summary: t.Summary})
	}
	writeJSON(w, http.StatusOK, map[string]any{"threads": out})
}
