// Package main is the CLI entry point for the agent execution kernel: it
// wires every subsystem's constructor together in dependency order and
// exposes serve/status subcommands.
//
// Build information is populated by ldflags during release builds:
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD)"
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kodokalabs/tetsuo.26/internal/approval"
	"github.com/kodokalabs/tetsuo.26/internal/audit"
	"github.com/kodokalabs/tetsuo.26/internal/channel"
	"github.com/kodokalabs/tetsuo.26/internal/config"
	"github.com/kodokalabs/tetsuo.26/internal/costs"
	"github.com/kodokalabs/tetsuo.26/internal/events"
	"github.com/kodokalabs/tetsuo.26/internal/gateway"
	"github.com/kodokalabs/tetsuo.26/internal/llm"
	"github.com/kodokalabs/tetsuo.26/internal/llm/providers"
	"github.com/kodokalabs/tetsuo.26/internal/memory"
	"github.com/kodokalabs/tetsuo.26/internal/metrics"
	"github.com/kodokalabs/tetsuo.26/internal/orchestrator"
	"github.com/kodokalabs/tetsuo.26/internal/security"
	"github.com/kodokalabs/tetsuo.26/internal/session"
	"github.com/kodokalabs/tetsuo.26/internal/settings"
	"github.com/kodokalabs/tetsuo.26/internal/tasks"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
	"github.com/kodokalabs/tetsuo.26/internal/tools/builtin"
)

var (
	version = "dev"
	commit  = "none"

	configPath string
)

func main() {
	root := &cobra.Command{
		Use:           "agentkerneld",
		Short:         "Local AI agent host: session loop, orchestrator, and control plane",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a kernel.yaml config file")
	root.AddCommand(newServeCmd(), newStatusCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "agentkerneld:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "agentkerneld %s (%s)\n", version, commit)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the configured gateway address and check that the gateway token loads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			token, err := security.LoadOrCreateGatewayToken(cfg.Agent.Workspace)
			if err != nil {
				return fmt.Errorf("load gateway token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "kernel configured at %s:%d (token loaded, %d chars)\n",
				cfg.Gateway.Host, cfg.Gateway.Port, len(token))
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the session loop, orchestrator, event plane, and control plane",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe builds every subsystem in dependency order (leaves first) and
// blocks until interrupted.
func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	workspace := cfg.Agent.Workspace
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	// --- leaf subsystems ---
	jail, err := security.NewPathJail(workspace)
	if err != nil {
		return fmt.Errorf("path jail: %w", err)
	}
	gatewayToken, err := security.LoadOrCreateGatewayToken(workspace)
	if err != nil {
		return fmt.Errorf("gateway token: %w", err)
	}

	_, statErr := os.Stat(filepath.Join(workspace, "settings.json"))
	firstBoot := os.IsNotExist(statErr)
	settingsStore, err := settings.NewStore(workspace, func() string { return gatewayToken })
	if err != nil {
		return fmt.Errorf("settings store: %w", err)
	}
	if firstBoot {
		// First boot in this workspace: seed the settings document from the
		// config file so agentName/autonomyLevel don't silently stay at
		// Default()'s values. Later admin edits win on every subsequent boot.
		if _, _, err := settingsStore.Update(map[string]any{
			"agentName":     cfg.Agent.Name,
			"autonomyLevel": cfg.Agent.AutonomyLevel,
		}, nil); err != nil {
			return fmt.Errorf("apply agent settings: %w", err)
		}
	}
	taskStore, err := tasks.NewStore(filepath.Join(workspace, "tasks"))
	if err != nil {
		return fmt.Errorf("task store: %w", err)
	}
	approvalBroker, err := approval.NewBroker(filepath.Join(workspace, "approvals"))
	if err != nil {
		return fmt.Errorf("approval broker: %w", err)
	}
	costManager, err := costs.NewManager(workspace)
	if err != nil {
		return fmt.Errorf("cost manager: %w", err)
	}
	auditLogger, err := audit.NewLogger(filepath.Join(workspace, "logs"))
	if err != nil {
		return fmt.Errorf("audit logger: %w", err)
	}
	defer auditLogger.Close()
	threadStore, err := memory.NewStore(filepath.Join(workspace, "memory"), nil)
	if err != nil {
		return fmt.Errorf("memory store: %w", err)
	}
	noteStore, err := memory.NewNoteStore(filepath.Join(workspace, "memory"))
	if err != nil {
		return fmt.Errorf("note store: %w", err)
	}
	triggerRegistry, err := events.NewRegistry(workspace)
	if err != nil {
		return fmt.Errorf("trigger registry: %w", err)
	}

	router, err := buildRouter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	toolRegistry := tools.NewRegistry(settingsStore.Get().Limits.MaxToolOutputChars)
	toolRegistry.SetAudit(func(call tools.Call, result tools.Result, blocked bool, reason string) {
		action := "tool_call"
		if blocked {
			action = "tool_blocked"
		}
		_ = auditLogger.Log(audit.Entry{
			Action:        action,
			Tool:          call.Name,
			Input:         string(call.Input),
			ResultPreview: result.Content,
			Channel:       call.Channel,
			UserID:        call.User,
			Blocked:       blocked,
			Reason:        reason,
		})
	})

	orch := orchestrator.New(router, taskStore, toolRegistry, approvalBroker, costManager, settingsStore)
	defer orch.Shutdown()

	builtin.RegisterAll(toolRegistry, &builtin.Deps{
		Jail:          jail,
		Tasks:         taskStore,
		Approvals:     approvalBroker,
		Costs:         costManager,
		Threads:       threadStore,
		Notes:         noteStore,
		Triggers:      triggerRegistry,
		Settings:      settingsStore,
		Orchestrator:  orch,
		HeartbeatPath: filepath.Join(workspace, "HEARTBEAT.md"),
	})

	loop := &session.Loop{
		Router:      router,
		DefaultTier: llm.TierBalanced,
		Tools:       toolRegistry,
		Tasks:       taskStore,
		Approvals:   approvalBroker,
		Costs:       costManager,
		Threads:     threadStore,
		Settings:    settingsStore,
		Audit:       auditLogger,
		Workspace:   workspace,
	}

	outbound := channel.NewRegistry()
	outbound.Register(channel.NewConsole(os.Stdout))

	triggerRegistry.OnFire(func(f events.Fired) {
		reply, err := loop.Run(ctx, session.Inbound{
			Channel:        f.Action.Channel,
			Mode:           session.ModeTrigger,
			TriggerName:    string(f.TriggerID),
			TriggerType:    string(f.Source),
			TriggerAction:  string(f.Action.Kind),
			TriggerPayload: triggerPayloadJSON(f),
		})
		if err != nil {
			logger.Error("trigger-driven turn failed", "trigger", f.TriggerID, "error", err)
			return
		}
		if reply != "" {
			_ = outbound.Send(ctx, f.Action.Channel, "trigger", reply)
		}
	})

	metricsRegistry := metrics.New()
	sessionIssuer := security.NewSessionIssuer(gatewayToken, 24*time.Hour)

	gw := gateway.New(gateway.Config{
		Host:        cfg.Gateway.Host,
		Port:        cfg.Gateway.Port,
		WebhookPort: cfg.Gateway.WebhookPort,
		Token:       gatewayToken,
		AgentName:   cfg.Agent.Name,
		Workspace:   workspace,
		Router:      router,
		Tools:       toolRegistry,
		Tasks:       taskStore,
		Approvals:   approvalBroker,
		Costs:       costManager,
		Triggers:    triggerRegistry,
		Settings:    settingsStore,
		Audit:       auditLogger,
		Memory:      threadStore,
		Session:     loop,
		Metrics:     metricsRegistry,
		Sessions:    sessionIssuer,
		Logger:      logger,
	})

	if err := gw.Start(ctx); err != nil {
		return fmt.Errorf("start gateway: %w", err)
	}
	defer gw.Shutdown(ctx)

	var heartbeat *events.Heartbeat
	if cfg.Heartbeat.Enabled {
		heartbeat = &events.Heartbeat{
			Path:     filepath.Join(workspace, "HEARTBEAT.md"),
			Interval: cfg.Heartbeat.Interval,
			Channel:  cfg.Heartbeat.Channel,
			OnFire: func(f events.Fired) {
				reply, err := loop.Run(ctx, session.Inbound{
					Channel: f.Action.Channel,
					Mode:    session.ModeHeartbeat,
					Text:    f.Action.Content,
				})
				if err != nil {
					logger.Error("heartbeat turn failed", "error", err)
					return
				}
				if reply != "" {
					_ = outbound.Send(ctx, f.Action.Channel, "heartbeat", reply)
				}
			},
		}
		heartbeat.Start()
		defer heartbeat.Stop()
	}

	cronRunner := events.NewCronRunner(triggerRegistry)
	if err := cronRunner.Start(); err != nil {
		logger.Warn("cron runner failed to start", "error", err)
	}
	defer cronRunner.Stop()

	fileWatchRunner, err := events.NewFileWatchRunner(triggerRegistry)
	if err != nil {
		logger.Warn("file watch runner unavailable", "error", err)
	} else {
		if err := fileWatchRunner.Start(); err != nil {
			logger.Warn("file watch runner failed to start", "error", err)
		}
		defer fileWatchRunner.Stop()
	}

	calendarRunner := events.NewCalendarRunner(triggerRegistry)
	calendarRunner.Start()
	defer calendarRunner.Stop()

	emailWatchRunner := events.NewEmailWatchRunner(triggerRegistry)
	emailWatchRunner.Start()
	defer emailWatchRunner.Stop()

	logger.Info("kernel serving", "workspace", workspace, "gateway_port", cfg.Gateway.Port)

	waitForSignal(ctx)
	return nil
}

func triggerPayloadJSON(f events.Fired) string {
	b, err := json.Marshal(f.Payload)
	if err != nil {
		return ""
	}
	return string(b)
}

func waitForSignal(ctx context.Context) {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
}

// buildRouter assembles the tier -> Route table from configured providers,
// skipping any tier whose provider has no API key rather than failing
// start-up outright, per the router's degrade-by-omission contract.
func buildRouter(ctx context.Context, cfg *config.Config) (*llm.Router, error) {
	routes := map[llm.Tier]llm.Route{}

	if anthropicCfg, ok := cfg.LLM.Providers["anthropic"]; ok && anthropicCfg.APIKey != "" {
		fastModel := firstNonEmpty(anthropicCfg.FastModel, "claude-3-5-haiku-latest")
		balancedModel := firstNonEmpty(anthropicCfg.BalancedModel, "claude-sonnet-4-5")
		reasoningModel := firstNonEmpty(anthropicCfg.ReasoningModel, "claude-opus-4-1")
		routes[llm.TierFast] = llm.Route{
			Tier: llm.TierFast, Model: fastModel,
			Provider: providers.NewAnthropicProvider(anthropicCfg.APIKey, fastModel),
			Price:    llm.PriceCoefficients{InputPerMillion: 0.80, OutputPerMillion: 4.00},
		}
		routes[llm.TierBalanced] = llm.Route{
			Tier: llm.TierBalanced, Model: balancedModel,
			Provider: providers.NewAnthropicProvider(anthropicCfg.APIKey, balancedModel),
			Price:    llm.PriceCoefficients{InputPerMillion: 3.00, OutputPerMillion: 15.00},
		}
		routes[llm.TierReasoning] = llm.Route{
			Tier: llm.TierReasoning, Model: reasoningModel,
			Provider: providers.NewAnthropicProvider(anthropicCfg.APIKey, reasoningModel),
			Price:    llm.PriceCoefficients{InputPerMillion: 15.00, OutputPerMillion: 75.00},
		}
	}

	if openaiCfg, ok := cfg.LLM.Providers["openai"]; ok && openaiCfg.APIKey != "" {
		if _, exists := routes[llm.TierFast]; !exists {
			model := firstNonEmpty(openaiCfg.FastModel, "gpt-4o-mini")
			routes[llm.TierFast] = llm.Route{
				Tier: llm.TierFast, Model: model,
				Provider: providers.NewOpenAIProvider(openaiCfg.APIKey, model),
				Price:    llm.PriceCoefficients{InputPerMillion: 0.15, OutputPerMillion: 0.60},
			}
		}
		if _, exists := routes[llm.TierBalanced]; !exists {
			model := firstNonEmpty(openaiCfg.BalancedModel, "gpt-4o")
			routes[llm.TierBalanced] = llm.Route{
				Tier: llm.TierBalanced, Model: model,
				Provider: providers.NewOpenAIProvider(openaiCfg.APIKey, model),
				Price:    llm.PriceCoefficients{InputPerMillion: 2.50, OutputPerMillion: 10.00},
			}
		}
	}

	if bedrockCfg, ok := cfg.LLM.Providers["bedrock"]; ok && bedrockCfg.Region != "" {
		model := firstNonEmpty(bedrockCfg.BalancedModel, "anthropic.claude-3-5-sonnet-20241022-v2:0")
		p, err := providers.NewBedrockProvider(ctx, bedrockCfg.Region, model)
		if err != nil {
			return nil, fmt.Errorf("bedrock provider: %w", err)
		}
		if _, exists := routes[llm.TierReasoning]; !exists {
			routes[llm.TierReasoning] = llm.Route{
				Tier: llm.TierReasoning, Model: model, Provider: p,
				Price: llm.PriceCoefficients{InputPerMillion: 3.00, OutputPerMillion: 15.00},
			}
		}
	}

	if localCfg, ok := cfg.LLM.Providers["local"]; ok {
		model := firstNonEmpty(localCfg.BalancedModel, "llama3")
		routes[llm.TierLocal] = llm.Route{
			Tier: llm.TierLocal, Model: model,
			Provider: providers.NewLocalProvider(providers.LocalConfig{DefaultModel: model}),
			Price:    llm.PriceCoefficients{},
		}
	}

	return llm.NewRouter(routes), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
