package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kodokalabs/tetsuo.26/internal/llm"
)

func TestNewLocalProviderName(t *testing.T) {
	p := NewLocalProvider(LocalConfig{DefaultModel: "llama3"})
	if p.Name() != "local" {
		t.Fatalf("expected name local, got %q", p.Name())
	}
	if p.model != "llama3" {
		t.Fatalf("expected default model llama3, got %q", p.model)
	}
}

func TestNewLocalProviderBuildsClientWithEmptyBaseURL(t *testing.T) {
	p := NewLocalProvider(LocalConfig{})
	if p.client == nil {
		t.Fatalf("expected a configured client even with an empty base URL")
	}
}

func TestNewLocalProviderTrimsTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	p := NewLocalProvider(LocalConfig{BaseURL: srv.URL + "/v1/", DefaultModel: "llama3"})
	if p.client == nil {
		t.Fatalf("expected a configured client")
	}
	if _, err := p.Complete(context.Background(), llm.Request{Messages: []llm.Message{{Role: "user", Content: "hi"}}}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if gotPath != "/v1/chat/completions" {
		t.Fatalf("expected request path /v1/chat/completions, got %q", gotPath)
	}
}
