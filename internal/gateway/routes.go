package gateway

import "net/http"

// adminMux assembles the admin control-plane routes from §6. Every route
// passes through the fixed security headers, CORS, the body limit, rate
// limiting, and request metrics; every route except /health also requires
// auth.
func (s *Server) adminMux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /skills", s.handleSkills)
	mux.HandleFunc("GET /memory", s.handleMemory)

	mux.HandleFunc("POST /admin/api/session", s.handleSessionLogin)

	mux.HandleFunc("GET /admin/api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /admin/api/settings", s.handlePatchSettings)
	mux.HandleFunc("POST /admin/api/settings/confirm", s.handleConfirmSetting)

	mux.HandleFunc("GET /admin/api/tasks", s.handleListTasks)
	mux.HandleFunc("GET /admin/api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("POST /admin/api/tasks/{id}/action", s.handleTaskAction)

	mux.HandleFunc("GET /admin/api/approvals", s.handleListApprovals)
	mux.HandleFunc("POST /admin/api/approvals/{id}", s.handleResolveApproval)

	mux.HandleFunc("GET /admin/api/costs/today", s.handleCostsToday)
	mux.HandleFunc("GET /admin/api/costs/history", s.handleCostsHistory)
	mux.HandleFunc("GET /admin/api/costs/config", s.handleCostsConfig)
	mux.HandleFunc("POST /admin/api/costs/config", s.handleCostsConfigUpdate)

	mux.HandleFunc("GET /admin/api/triggers", s.handleListTriggers)
	mux.HandleFunc("POST /admin/api/triggers/{id}/toggle", s.handleToggleTrigger)
	mux.HandleFunc("DELETE /admin/api/triggers/{id}", s.handleDeleteTrigger)

	mux.HandleFunc("GET /admin/api/agents", s.handleAgents)

	mux.HandleFunc("GET /admin/api/audit", s.handleAudit)
	mux.HandleFunc("GET /admin/api/audit/dates", s.handleAuditDates)

	if s.cfg.Metrics != nil {
		mux.Handle("GET /admin/api/metrics", s.cfg.Metrics.Handler())
	}

	mux.Handle("/ws", s.wsHandler())

	protected := chain(mux, s.withSecurityHeaders, s.withCORS, s.withBodyLimit, s.withRateLimit, s.withAuthExceptHealth, s.withMetrics)
	return protected
}

// withAuthExceptHealth applies the bearer-token check to every path except
// the unauthenticated liveness probe.
func (s *Server) withAuthExceptHealth(next http.Handler) http.Handler {
	authed := s.withAuth(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		authed.ServeHTTP(w, r)
	})
}
