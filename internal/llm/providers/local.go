package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kodokalabs/tetsuo.26/internal/llm"
)

// LocalConfig configures the local/offline tier, an OpenAI-compatible server
// (e.g. Ollama's /v1 shim) reachable without network egress.
type LocalConfig struct {
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
}

// LocalProvider adapts an OpenAI-compatible local server to llm.Provider,
// giving the router a zero-cost, privacy-preserving tier for subtasks tagged
// offline-only.
type LocalProvider struct {
	client *openai.Client
	model  string
}

// NewLocalProvider builds a provider pointed at cfg.BaseURL, defaulting to
// Ollama's conventional local address.
func NewLocalProvider(cfg LocalConfig) *LocalProvider {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	clientCfg := openai.DefaultConfig("local")
	clientCfg.BaseURL = baseURL
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient.Timeout = cfg.Timeout
	}
	return &LocalProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.DefaultModel,
	}
}

func (p *LocalProvider) Name() string { return "local" }

// Complete reuses OpenAIProvider's message/tool conversion since the local
// server speaks the same chat-completions wire format.
func (p *LocalProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	adapter := &OpenAIProvider{client: p.client, model: model}
	resp, err := adapter.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("local: %w", err)
	}
	return resp, nil
}
