package gateway

import (
	"net/http"
	"time"
)

// sessionCookieName is the admin dashboard's browser cookie, layered on top
// of the bearer-token auth that remains required for every other caller.
const sessionCookieName = "kernel_session"

// handleSessionLogin exchanges an already-bearer-authenticated request for a
// short-lived signed cookie, so the dashboard's browser UI does not need to
// attach an Authorization header to every same-origin fetch.
func (s *Server) handleSessionLogin(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Sessions == nil {
		writeError(w, http.StatusNotImplemented, "session cookies are not configured")
		return
	}
	var body struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if body.UserID == "" {
		body.UserID = "dashboard"
	}
	token, err := s.cfg.Sessions.Issue(body.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue session: "+err.Error())
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(24 * time.Hour / time.Second),
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionUserID reports the dashboard user bound to a valid session cookie,
// if one is attached and this server has cookie sessions configured.
func (s *Server) sessionUserID(r *http.Request) (string, bool) {
	if s.cfg.Sessions == nil {
		return "", false
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	userID, err := s.cfg.Sessions.Verify(cookie.Value)
	if err != nil {
		return "", false
	}
	return userID, true
}
