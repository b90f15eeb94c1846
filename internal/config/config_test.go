package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gateway.Host != "127.0.0.1" {
		t.Fatalf("expected default gateway host, got %q", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 18789 {
		t.Fatalf("expected default gateway port, got %d", cfg.Gateway.Port)
	}
	if cfg.Agent.AutonomyLevel != "low" {
		t.Fatalf("expected default autonomy level, got %q", cfg.Agent.AutonomyLevel)
	}
}

func TestLoadRejectsClashingPorts(t *testing.T) {
	path := writeConfig(t, `
gateway:
  port: 9000
  webhook_port: 9000
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "gateway.port and gateway.webhook_port") {
		t.Fatalf("expected port clash error, got %v", err)
	}
}

func TestLoadRejectsInvalidAutonomyLevel(t *testing.T) {
	path := writeConfig(t, `
agent:
  autonomy_level: reckless
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "autonomy_level") {
		t.Fatalf("expected autonomy_level error, got %v", err)
	}
}

func TestLoadRejectsNegativeMaxToolCalls(t *testing.T) {
	path := writeConfig(t, `
agent:
  max_tool_calls: -1
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "max_tool_calls") {
		t.Fatalf("expected max_tool_calls error, got %v", err)
	}
}

func TestLoadRejectsHeartbeatWithoutInterval(t *testing.T) {
	path := writeConfig(t, `
heartbeat:
  enabled: true
  interval: 0s
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "heartbeat.interval") {
		t.Fatalf("expected heartbeat.interval error, got %v", err)
	}
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
gateway:
  host: 0.0.0.0
  port: 9001
  webhook_port: 9002
llm:
  default_provider: anthropic
  providers:
    anthropic:
      api_key: sk-test
      fast_model: claude-haiku
agent:
  name: scout
  autonomy_level: medium
heartbeat:
  enabled: true
  interval: 5m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gateway.Port != 9001 {
		t.Fatalf("expected gateway port 9001, got %d", cfg.Gateway.Port)
	}
	if cfg.Agent.Name != "scout" {
		t.Fatalf("expected agent name scout, got %q", cfg.Agent.Name)
	}
	if cfg.LLM.Providers["anthropic"].APIKey != "sk-test" {
		t.Fatalf("expected anthropic api key, got %q", cfg.LLM.Providers["anthropic"].APIKey)
	}
}

func TestLoadExpandsEnvVarsInYAML(t *testing.T) {
	t.Setenv("TEST_AGENT_NAME", "envbot")
	path := writeConfig(t, `
agent:
  name: ${TEST_AGENT_NAME}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Agent.Name != "envbot" {
		t.Fatalf("expected expanded agent name, got %q", cfg.Agent.Name)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("GATEWAY_HOST", "10.0.0.5")
	t.Setenv("GATEWAY_PORT", "9100")
	t.Setenv("HEARTBEAT_ENABLED", "true")
	t.Setenv("HEARTBEAT_INTERVAL", "10m")
	t.Setenv("ANTHROPIC_API_KEY", "sk-env-override")

	path := writeConfig(t, `
gateway:
  host: 127.0.0.1
  port: 18789
  webhook_port: 18790
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gateway.Host != "10.0.0.5" {
		t.Fatalf("expected gateway host override, got %q", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 9100 {
		t.Fatalf("expected gateway port override, got %d", cfg.Gateway.Port)
	}
	if !cfg.Heartbeat.Enabled {
		t.Fatalf("expected heartbeat enabled override")
	}
	if cfg.Heartbeat.Interval.String() != "10m0s" {
		t.Fatalf("expected heartbeat interval override, got %v", cfg.Heartbeat.Interval)
	}
	if cfg.LLM.Providers["anthropic"].APIKey != "sk-env-override" {
		t.Fatalf("expected anthropic api key env override, got %q", cfg.LLM.Providers["anthropic"].APIKey)
	}
}

func TestLoadEnvOverrideNeverClobbersUnsetValue(t *testing.T) {
	path := writeConfig(t, `
gateway:
  host: 192.168.1.1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gateway.Host != "192.168.1.1" {
		t.Fatalf("expected YAML host to survive with no env override, got %q", cfg.Gateway.Host)
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "agentkernel.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}
