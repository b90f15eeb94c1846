package builtin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func newTestRegistry(t *testing.T, deps *Deps) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry(20000)
	RegisterAll(reg, deps)
	return reg
}

func TestWriteThenReadFileRoundTrips(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "write_file",
		Input: []byte(`{"path":"notes/todo.txt","content":"buy milk"}`),
	})
	if err != nil || res.IsError {
		t.Fatalf("write_file failed: err=%v result=%+v", err, res)
	}

	res, err = reg.Execute(context.Background(), tools.Call{
		Name:  "read_file",
		Input: []byte(`{"path":"notes/todo.txt"}`),
	})
	if err != nil || res.IsError {
		t.Fatalf("read_file failed: err=%v result=%+v", err, res)
	}
	if res.Content != "buy milk" {
		t.Fatalf("expected %q, got %q", "buy milk", res.Content)
	}
}

func TestWriteFileRejectsExecutableExtension(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "write_file",
		Input: []byte(`{"path":"payload.exe","content":"x"}`),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected write to an .exe to be rejected")
	}
}

func TestWriteFileRejectsPathEscapingWorkspace(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	res, err := reg.Execute(context.Background(), tools.Call{
		Name:  "write_file",
		Input: []byte(`{"path":"../escape.txt","content":"x"}`),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected a path escaping the workspace to be rejected")
	}
}

func TestWriteFileAppendsWhenRequested(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	type writeArgs struct {
		Path    string `json:"path"`
		Content string `json:"content"`
		Append  bool   `json:"append"`
	}
	calls := []writeArgs{
		{Path: "log.txt", Content: "first\n", Append: false},
		{Path: "log.txt", Content: "second\n", Append: true},
	}
	for i, args := range calls {
		input, err := json.Marshal(args)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		res, err := reg.Execute(context.Background(), tools.Call{Name: "write_file", Input: input})
		if err != nil || res.IsError {
			t.Fatalf("write_file iteration %d failed: err=%v result=%+v", i, err, res)
		}
	}

	data, err := os.ReadFile(filepath.Join(deps.Jail.Root, "log.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Fatalf("expected appended content, got %q", string(data))
	}
}

func TestListDirectoryDefaultsToWorkspaceRoot(t *testing.T) {
	deps := newTestDeps(t)
	reg := newTestRegistry(t, deps)

	if err := os.WriteFile(filepath.Join(deps.Jail.Root, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Mkdir(filepath.Join(deps.Jail.Root, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	res, err := reg.Execute(context.Background(), tools.Call{Name: "list_directory", Input: []byte(`{}`)})
	if err != nil || res.IsError {
		t.Fatalf("list_directory failed: err=%v result=%+v", err, res)
	}
	if !contains(res.Content, "a.txt") || !contains(res.Content, "sub/") {
		t.Fatalf("expected listing to include a.txt and sub/, got %q", res.Content)
	}
}

func contains(haystack, needle string) bool {
	return len(needle) == 0 || (len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
