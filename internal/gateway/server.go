// Package gateway implements the HTTP control plane: the admin API, the
// WebSocket event stream, and the webhook listener described in the
// external interfaces contract.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kodokalabs/tetsuo.26/internal/approval"
	"github.com/kodokalabs/tetsuo.26/internal/audit"
	"github.com/kodokalabs/tetsuo.26/internal/costs"
	"github.com/kodokalabs/tetsuo.26/internal/events"
	"github.com/kodokalabs/tetsuo.26/internal/llm"
	"github.com/kodokalabs/tetsuo.26/internal/memory"
	"github.com/kodokalabs/tetsuo.26/internal/metrics"
	"github.com/kodokalabs/tetsuo.26/internal/ratelimit"
	"github.com/kodokalabs/tetsuo.26/internal/security"
	"github.com/kodokalabs/tetsuo.26/internal/session"
	"github.com/kodokalabs/tetsuo.26/internal/settings"
	"github.com/kodokalabs/tetsuo.26/internal/tasks"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

// Config is everything the gateway needs to wire its routes. Every
// collaborator is a pointer to a process-global singleton owned by the
// caller (cmd/agentkerneld's wiring), not by the Server.
type Config struct {
	Host           string
	Port           int // admin/control HTTP port, default 18789
	WebhookPort    int // separate loopback port, default 18790
	Token          string
	AgentName      string
	Workspace      string
	MaxRequestBody int64

	Router    *llm.Router
	Tools     *tools.Registry
	Tasks     *tasks.Store
	Approvals *approval.Broker
	Costs     *costs.Manager
	Triggers  *events.Registry
	Settings  *settings.Store
	Audit     *audit.Logger
	Memory    *memory.Store
	Session   *session.Loop
	Metrics   *metrics.Metrics
	Sessions  *security.SessionIssuer // optional: enables the dashboard cookie login
	Logger    *slog.Logger
}

// Server is the running control plane: one http.Server for the admin API
// and WebSocket, one for the webhook listener.
type Server struct {
	cfg       Config
	logger    *slog.Logger
	startTime time.Time
	limiter   *ratelimit.Limiter
	hub       *hub

	httpServer    *http.Server
	httpListener  net.Listener
	webhookServer *http.Server
	webhookListen net.Listener
}

// New builds a Server from cfg. Start actually binds the listeners.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 18789
	}
	if cfg.WebhookPort == 0 {
		cfg.WebhookPort = 18790
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.MaxRequestBody <= 0 {
		cfg.MaxRequestBody = 1 << 20
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		startTime: time.Now(),
		limiter:   ratelimit.NewLimiter(),
		hub:       newHub(),
	}
	if s.cfg.Tools != nil {
		s.cfg.Tools.SetEvents(s.onToolEvent)
	}
	if s.cfg.Approvals != nil {
		s.cfg.Approvals.OnEvent(s.onApprovalEvent)
	}
	if s.cfg.Triggers != nil {
		s.cfg.Triggers.OnFire(s.onTriggerFired)
	}
	if s.cfg.Session != nil {
		s.cfg.Session.OnInbound = s.onMessageReceived
	}
	return s
}

// Start binds both listeners and serves in the background until ctx is
// cancelled or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if err := s.startAdmin(); err != nil {
		return err
	}
	if err := s.startWebhooks(); err != nil {
		s.stopAdmin(ctx)
		return err
	}
	return nil
}

func (s *Server) startAdmin() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("gateway: listen admin: %w", err)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.adminMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.httpServer = srv
	s.httpListener = listener
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("admin http server error", "error", err)
		}
	}()
	s.logger.Info("gateway admin listening", "addr", addr)
	return nil
}

func (s *Server) startWebhooks() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.WebhookPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("gateway: listen webhooks: %w", err)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(s.handleWebhook),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.webhookServer = srv
	s.webhookListen = listener
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("webhook http server error", "error", err)
		}
	}()
	s.logger.Info("gateway webhook listener listening", "addr", addr)
	return nil
}

// Shutdown gracefully stops both listeners.
func (s *Server) Shutdown(ctx context.Context) {
	s.stopAdmin(ctx)
	if s.webhookServer != nil {
		if err := s.webhookServer.Shutdown(ctx); err != nil {
			s.logger.Warn("webhook server shutdown error", "error", err)
		}
		s.webhookServer = nil
	}
}

func (s *Server) stopAdmin(ctx context.Context) {
	if s.httpServer == nil {
		return
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("admin server shutdown error", "error", err)
	}
	s.httpServer = nil
}
