package gateway

import (
	"net/http"

	"github.com/kodokalabs/tetsuo.26/internal/settings"
)

// redactSettings reports only presence/absence of each configured
// credential, never its value, per the admin API's credential contract.
func redactSettings(rs settings.RuntimeSettings) map[string]any {
	present := make(map[string]bool, len(rs.Credentials))
	for k := range rs.Credentials {
		present[k] = true
	}
	return map[string]any{
		"security":          rs.Security,
		"limits":            rs.Limits,
		"toolPermissions":   rs.ToolPermissions,
		"allowDomains":      rs.AllowDomains,
		"blockDomains":      rs.BlockDomains,
		"autonomyLevel":     rs.AutonomyLevel,
		"agentName":         rs.AgentName,
		"credentialsPresent": present,
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, redactSettings(s.cfg.Settings.Get()))
}

func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Patch         map[string]any    `json:"patch"`
		ConfirmTokens map[string]string `json:"confirmTokens"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	applied, required, err := s.cfg.Settings.Update(body.Patch, body.ConfirmTokens)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"settings":             redactSettings(applied),
		"requiredConfirmation": required,
	})
}

func (s *Server) handleConfirmSetting(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	token := s.cfg.Settings.ConfirmToken(body.Key, body.Value)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
