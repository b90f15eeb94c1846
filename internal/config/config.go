// Package config loads the on-disk/environment configuration that wires
// the kernel's subsystems together at start-up: the model router's tier
// table, the gateway's ports and workspace, heartbeat scheduling, and the
// allowed-user identity list.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document, loaded from an optional YAML
// file and then overlaid with environment variables per §6.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway"`
	LLM       LLMConfig       `yaml:"llm"`
	Channels  ChannelsConfig  `yaml:"channels"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Agent     AgentConfig     `yaml:"agent"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GatewayConfig configures the admin HTTP control plane and webhook listener.
type GatewayConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	WebhookPort int    `yaml:"webhook_port"`
}

// LLMConfig configures the default provider and the per-tier model table.
type LLMConfig struct {
	DefaultProvider string                       `yaml:"default_provider"`
	Providers       map[string]LLMProviderConfig `yaml:"providers"`
}

// LLMProviderConfig holds one provider's credentials and tier model names.
type LLMProviderConfig struct {
	APIKey        string `yaml:"api_key"`
	Region        string `yaml:"region"`
	FastModel     string `yaml:"fast_model"`
	BalancedModel string `yaml:"balanced_model"`
	ReasoningModel string `yaml:"reasoning_model"`
}

// ChannelsConfig holds credentials for external chat-channel client
// libraries. The kernel itself never imports a Telegram/Discord SDK; these
// values are only read and handed to whatever adapter the deployer wires
// in as a channel.Outbound.
type ChannelsConfig struct {
	TelegramBotToken        string   `yaml:"telegram_bot_token"`
	DiscordBotToken         string   `yaml:"discord_bot_token"`
	DiscordAllowedChannelIDs []string `yaml:"discord_allowed_channel_ids"`
}

// HeartbeatConfig controls the periodic HEARTBEAT.md-driven check-in tick.
type HeartbeatConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Channel  string        `yaml:"channel"`
}

// AgentConfig holds identity and resource-bound defaults applied to a fresh
// settings.RuntimeSettings document.
type AgentConfig struct {
	Name           string   `yaml:"name"`
	Workspace      string   `yaml:"workspace"`
	MaxToolCalls   int      `yaml:"max_tool_calls"`
	AutonomyLevel  string   `yaml:"autonomy_level"`
	AllowedUserIDs []string `yaml:"allowed_user_ids"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads path if it exists (environment variables are expanded inline,
// matching the teacher's $VAR-in-YAML convention), applies environment
// overrides, fills defaults, and validates the result. A missing path is
// not an error: the document starts from an all-default Config.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else {
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "127.0.0.1"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 18789
	}
	if cfg.Gateway.WebhookPort == 0 {
		cfg.Gateway.WebhookPort = 18790
	}
	if cfg.LLM.DefaultProvider == "" {
		cfg.LLM.DefaultProvider = "anthropic"
	}
	if cfg.Heartbeat.Interval == 0 {
		cfg.Heartbeat.Interval = 30 * time.Minute
	}
	if cfg.Heartbeat.Channel == "" {
		cfg.Heartbeat.Channel = "console"
	}
	if cfg.Agent.Name == "" {
		cfg.Agent.Name = "agent"
	}
	if cfg.Agent.Workspace == "" {
		cfg.Agent.Workspace = "."
	}
	if cfg.Agent.MaxToolCalls == 0 {
		cfg.Agent.MaxToolCalls = 25
	}
	if cfg.Agent.AutonomyLevel == "" {
		cfg.Agent.AutonomyLevel = "low"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// applyEnvOverrides applies the environment configuration table from §6.
// Every override is opt-in: an unset variable never clobbers a value
// already present from the YAML document.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("GATEWAY_HOST")); v != "" {
		cfg.Gateway.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("GATEWAY_PORT")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("LLM_PROVIDER")); v != "" {
		cfg.LLM.DefaultProvider = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		cfg.Channels.TelegramBotToken = v
	}
	if v := strings.TrimSpace(os.Getenv("DISCORD_BOT_TOKEN")); v != "" {
		cfg.Channels.DiscordBotToken = v
	}
	if v := strings.TrimSpace(os.Getenv("DISCORD_ALLOWED_CHANNEL_IDS")); v != "" {
		cfg.Channels.DiscordAllowedChannelIDs = strings.Split(v, ",")
	}
	if v := strings.TrimSpace(os.Getenv("HEARTBEAT_ENABLED")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.Heartbeat.Enabled = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("HEARTBEAT_INTERVAL")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Heartbeat.Interval = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("HEARTBEAT_CHANNEL")); v != "" {
		cfg.Heartbeat.Channel = v
	}
	if v := strings.TrimSpace(os.Getenv("AGENT_NAME")); v != "" {
		cfg.Agent.Name = v
	}
	if v := strings.TrimSpace(os.Getenv("AGENT_WORKSPACE")); v != "" {
		cfg.Agent.Workspace = v
	}
	if v := strings.TrimSpace(os.Getenv("AGENT_MAX_TOOL_CALLS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Agent.MaxToolCalls = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("AGENT_AUTONOMY_LEVEL")); v != "" {
		cfg.Agent.AutonomyLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("ALLOWED_USER_IDS")); v != "" {
		cfg.Agent.AllowedUserIDs = strings.Split(v, ",")
	}

	for _, provider := range []string{"anthropic", "openai", "bedrock"} {
		envPrefix := strings.ToUpper(provider) + "_API_KEY"
		if v := strings.TrimSpace(os.Getenv(envPrefix)); v != "" {
			if cfg.LLM.Providers == nil {
				cfg.LLM.Providers = map[string]LLMProviderConfig{}
			}
			entry := cfg.LLM.Providers[provider]
			entry.APIKey = v
			cfg.LLM.Providers[provider] = entry
		}
	}
}

// ValidationError reports every configuration problem found, mirroring the
// teacher's accumulate-then-report validation style rather than failing on
// the first issue.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Issues, "\n- ")
}

func validate(cfg *Config) error {
	var issues []string

	if cfg.Gateway.Port == cfg.Gateway.WebhookPort {
		issues = append(issues, "gateway.port and gateway.webhook_port must differ")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Agent.AutonomyLevel)) {
	case "low", "medium", "high":
	default:
		issues = append(issues, `agent.autonomy_level must be "low", "medium", or "high"`)
	}
	if cfg.Agent.MaxToolCalls < 0 {
		issues = append(issues, "agent.max_tool_calls must be >= 0")
	}
	if cfg.Heartbeat.Enabled && cfg.Heartbeat.Interval <= 0 {
		issues = append(issues, "heartbeat.interval must be > 0 when heartbeat is enabled")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
