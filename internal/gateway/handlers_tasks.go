package gateway

import (
	"net/http"

	"github.com/kodokalabs/tetsuo.26/internal/tasks"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		writeJSON(w, http.StatusOK, map[string]any{"tasks": s.cfg.Tasks.ListRecent(100)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": s.cfg.Tasks.ListByStatus(tasks.Status(status))})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, ok := s.cfg.Tasks.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskAction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var body struct {
		Action string `json:"action"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	switch body.Action {
	case "cancel":
		t, err := s.cfg.Tasks.UpdateStatus(id, tasks.StatusCancelled, nil, "", "cancelled via admin API")
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.RecordTaskOutcome(string(tasks.StatusCancelled))
		}
		writeJSON(w, http.StatusOK, t)
	case "pause":
		t, err := s.cfg.Tasks.UpdateStatus(id, tasks.StatusPaused, nil, "", "")
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, t)
	case "resume":
		t, err := s.cfg.Tasks.UpdateStatus(id, tasks.StatusPending, nil, "", "")
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, t)
	case "delete":
		if err := s.cfg.Tasks.Delete(id); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		writeError(w, http.StatusBadRequest, "unknown action: "+body.Action)
	}
}
