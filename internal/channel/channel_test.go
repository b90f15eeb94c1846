package channel

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRegistrySendRoutesToRegisteredAdapter(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry()
	r.Register(NewConsole(&buf))

	if err := r.Send(context.Background(), "console", "alice", "hello"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "alice") || !strings.Contains(got, "hello") {
		t.Fatalf("expected delivered text in console output, got %q", got)
	}
}

func TestRegistrySendUnknownChannelErrors(t *testing.T) {
	r := NewRegistry()
	err := r.Send(context.Background(), "telegram", "alice", "hello")
	if err == nil {
		t.Fatalf("expected error for unregistered channel")
	}
	if !strings.Contains(err.Error(), "telegram") {
		t.Fatalf("expected channel name in error, got %v", err)
	}
}

func TestConsoleSendFormat(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	if err := c.Send(context.Background(), "console", "bob", "turn complete"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	want := "[console -> bob] turn complete\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestConsoleName(t *testing.T) {
	c := NewConsole(&bytes.Buffer{})
	if c.Name() != "console" {
		t.Fatalf("expected name console, got %q", c.Name())
	}
}
