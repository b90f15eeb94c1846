package providers

import (
	"encoding/json"
	"testing"

	"github.com/kodokalabs/tetsuo.26/internal/llm"
)

func TestNewAnthropicProviderName(t *testing.T) {
	p := NewAnthropicProvider("test-key", "claude-sonnet-4-5")
	if p.Name() != "anthropic" {
		t.Fatalf("expected name anthropic, got %q", p.Name())
	}
	if p.model != "claude-sonnet-4-5" {
		t.Fatalf("expected default model to be stored, got %q", p.model)
	}
}

func TestAnthropicConvertMessagesSkipsSystemRole(t *testing.T) {
	p := NewAnthropicProvider("test-key", "claude-sonnet-4-5")
	out, err := p.convertMessages([]llm.Message{
		{Role: "system", Content: "be concise"},
		{Role: "user", Content: "hello"},
	})
	if err != nil {
		t.Fatalf("convertMessages() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected system message to be dropped, got %d messages", len(out))
	}
}

func TestAnthropicConvertMessagesFoldsToolRoleIntoToolResult(t *testing.T) {
	p := NewAnthropicProvider("test-key", "claude-sonnet-4-5")
	out, err := p.convertMessages([]llm.Message{
		{Role: "tool", ToolCallID: "call-1", Content: "42"},
	})
	if err != nil {
		t.Fatalf("convertMessages() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one converted message, got %d", len(out))
	}
}

func TestAnthropicConvertMessagesRejectsMalformedToolCallInput(t *testing.T) {
	p := NewAnthropicProvider("test-key", "claude-sonnet-4-5")
	_, err := p.convertMessages([]llm.Message{
		{Role: "assistant", ToolCalls: []llm.ToolCall{{ID: "c1", Name: "run", Input: []byte("not json")}}},
	})
	if err == nil {
		t.Fatalf("expected error for malformed tool call input")
	}
}

func TestAnthropicConvertToolsRejectsMalformedSchema(t *testing.T) {
	p := NewAnthropicProvider("test-key", "claude-sonnet-4-5")
	_, err := p.convertTools([]llm.ToolDefinition{
		{Name: "broken", Schema: []byte("not json")},
	})
	if err == nil {
		t.Fatalf("expected error for malformed schema")
	}
}

func TestAnthropicConvertToolsAcceptsValidSchema(t *testing.T) {
	p := NewAnthropicProvider("test-key", "claude-sonnet-4-5")
	schema, _ := json.Marshal(map[string]any{
		"type":       "object",
		"properties": map[string]any{"path": map[string]any{"type": "string"}},
	})
	tools, err := p.convertTools([]llm.ToolDefinition{
		{Name: "read_file", Description: "reads a file", Schema: schema},
	})
	if err != nil {
		t.Fatalf("convertTools() error = %v", err)
	}
	if len(tools) != 1 {
		t.Fatalf("expected one converted tool, got %d", len(tools))
	}
}
