package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

// blockedWriteExtensions rejects write_file calls that would create an
// executable artifact in the workspace.
var blockedWriteExtensions = map[string]bool{
	".exe": true, ".bat": true, ".cmd": true, ".com": true,
	".msi": true, ".scr": true, ".ps1": true, ".vbs": true, ".wsf": true,
}

func registerFileTools(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "read_file",
			Description: "Read a UTF-8 text file relative to the workspace root.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"path": map[string]any{"type": "string"}}, "required": []string{"path"}}),
			Risk:        tools.RiskLow,
			Category:    tools.CategoryFilesystem,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Path string `json:"path"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			safe, err := deps.Jail.SafePath(args.Path)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			data, err := os.ReadFile(safe)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: string(data)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "write_file",
			Description: "Write or append a UTF-8 text file relative to the workspace root. Rejects executable extensions.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":    map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
					"append":  map[string]any{"type": "boolean"},
				},
				"required": []string{"path", "content"},
			}),
			Risk:     tools.RiskMedium,
			Category: tools.CategoryFilesystem,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Path    string `json:"path"`
				Content string `json:"content"`
				Append  bool   `json:"append"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			ext := strings.ToLower(filepath.Ext(args.Path))
			if blockedWriteExtensions[ext] {
				return tools.Result{Content: fmt.Sprintf("Error: writing %q files is not permitted", ext), IsError: true}, nil
			}
			safe, err := deps.Jail.SafePath(args.Path)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			if err := os.MkdirAll(filepath.Dir(safe), 0o755); err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
			if args.Append {
				flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
			}
			f, err := os.OpenFile(safe, flags, 0o644)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			defer f.Close()
			if _, err := f.WriteString(args.Content); err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("wrote %d bytes to %s", len(args.Content), args.Path)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "list_directory",
			Description: "List entries of a directory relative to the workspace root.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"path": map[string]any{"type": "string"}}}),
			Risk:        tools.RiskLow,
			Category:    tools.CategoryFilesystem,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Path string `json:"path"`
			}
			_ = json.Unmarshal(call.Input, &args)
			if args.Path == "" {
				args.Path = "."
			}
			safe, err := deps.Jail.SafePath(args.Path)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			entries, err := os.ReadDir(safe)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			var b strings.Builder
			for _, e := range entries {
				if e.IsDir() {
					fmt.Fprintf(&b, "%s/\n", e.Name())
				} else {
					fmt.Fprintf(&b, "%s\n", e.Name())
				}
			}
			return tools.Result{Content: b.String()}, nil
		},
	})
}
