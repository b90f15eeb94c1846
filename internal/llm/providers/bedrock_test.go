package providers

import (
	"context"
	"testing"
)

func TestNewBedrockProviderName(t *testing.T) {
	p, err := NewBedrockProvider(context.Background(), "us-east-1", "anthropic.claude-3-sonnet")
	if err != nil {
		t.Fatalf("NewBedrockProvider() error = %v", err)
	}
	if p.Name() != "bedrock" {
		t.Fatalf("expected name bedrock, got %q", p.Name())
	}
	if p.model != "anthropic.claude-3-sonnet" {
		t.Fatalf("expected default model to be stored, got %q", p.model)
	}
}
