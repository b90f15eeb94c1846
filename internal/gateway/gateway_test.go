package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kodokalabs/tetsuo.26/internal/approval"
	"github.com/kodokalabs/tetsuo.26/internal/audit"
	"github.com/kodokalabs/tetsuo.26/internal/costs"
	"github.com/kodokalabs/tetsuo.26/internal/events"
	"github.com/kodokalabs/tetsuo.26/internal/llm"
	"github.com/kodokalabs/tetsuo.26/internal/memory"
	"github.com/kodokalabs/tetsuo.26/internal/settings"
	"github.com/kodokalabs/tetsuo.26/internal/tasks"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	taskStore, err := tasks.NewStore(dir + "/tasks")
	if err != nil {
		t.Fatalf("task store: %v", err)
	}
	approvals, err := approval.NewBroker(dir + "/approvals")
	if err != nil {
		t.Fatalf("broker: %v", err)
	}
	costManager, err := costs.NewManager(dir)
	if err != nil {
		t.Fatalf("cost manager: %v", err)
	}
	settingsStore, err := settings.NewStore(dir, func() string { return "secret" })
	if err != nil {
		t.Fatalf("settings store: %v", err)
	}
	auditLog, err := audit.NewLogger(dir + "/logs")
	if err != nil {
		t.Fatalf("audit logger: %v", err)
	}
	triggers, err := events.NewRegistry(dir)
	if err != nil {
		t.Fatalf("trigger registry: %v", err)
	}
	threads, err := memory.NewStore(dir+"/threads", nil)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	router := llm.NewRouter(map[llm.Tier]llm.Route{})

	return New(Config{
		Token:     "s3cr3t",
		AgentName: "tetsuo",
		Workspace: dir,
		Router:    router,
		Tools:     tools.NewRegistry(4000),
		Tasks:     taskStore,
		Approvals: approvals,
		Costs:     costManager,
		Triggers:  triggers,
		Settings:  settingsStore,
		Audit:     auditLog,
		Memory:    threads,
	})
}

func TestHealthRequiresNoAuth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.adminMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestStatusRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.adminMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer s3cr3t")
	rec = httptest.NewRecorder()
	s.adminMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with valid token", rec.Code)
	}
}

func TestStatusAcceptsQueryToken(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/status?token=s3cr3t", nil)
	rec := httptest.NewRecorder()
	s.adminMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestTasksListEmpty(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer s3cr3t")
	rec := httptest.NewRecorder()
	s.adminMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestWebhookUnknownPathIs404(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/not-configured", nil)
	rec := httptest.NewRecorder()
	s.handleWebhook(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSecurityHeadersArePresent(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.adminMux().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
}

func TestHubPublishReachesSubscribers(t *testing.T) {
	h := newHub()
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	h.publish("tool_called", map[string]any{"tool": "read_file"})
	select {
	case evt := <-ch:
		if evt.Type != "tool_called" {
			t.Fatalf("type = %q", evt.Type)
		}
	default:
		t.Fatal("expected a buffered event")
	}
}
