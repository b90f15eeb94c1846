package gateway

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/kodokalabs/tetsuo.26/internal/events"
)

// handleWebhook routes an inbound request on the webhook listener port to
// the trigger configured for its path, 404 otherwise.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	trigger, ok := s.cfg.Triggers.MatchWebhook(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read body")
		return
	}

	if err := events.VerifyWebhookSecret(trigger, body, r.Header.Get("X-Webhook-Secret"), r.Header.Get("X-Hub-Signature-256")); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var payload map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, "malformed JSON body")
			return
		}
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["_path"] = r.URL.Path
	payload["_method"] = r.Method

	if err := s.cfg.Triggers.Fire(trigger.ID, payload); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
