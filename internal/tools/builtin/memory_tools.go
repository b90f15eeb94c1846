package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

func registerMemoryTools(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "remember",
			Description: "Store a markdown-backed memory note with optional tags.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"content": map[string]any{"type": "string"},
					"tags":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"content"},
			}),
			Risk:     tools.RiskLow,
			Category: tools.CategoryMemory,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Content string   `json:"content"`
				Tags    []string `json:"tags"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			if deps.Notes == nil {
				return tools.Result{Content: "Error: memory notes are not available", IsError: true}, nil
			}
			n, err := deps.Notes.Remember(args.Content, args.Tags)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("remembered as %s", n.ID)}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "recall",
			Description: "Keyword-search stored memory notes.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"keyword": map[string]any{"type": "string"},
					"limit":   map[string]any{"type": "integer"},
				},
				"required": []string{"keyword"},
			}),
			Risk:     tools.RiskLow,
			Category: tools.CategoryMemory,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				Keyword string `json:"keyword"`
				Limit   int    `json:"limit"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			if args.Limit <= 0 {
				args.Limit = 10
			}
			if deps.Notes == nil {
				return tools.Result{Content: "Error: memory notes are not available", IsError: true}, nil
			}
			notes, err := deps.Notes.Recall(args.Keyword, args.Limit)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			if len(notes) == 0 {
				return tools.Result{Content: "no matching notes"}, nil
			}
			var b strings.Builder
			for _, n := range notes {
				fmt.Fprintf(&b, "[%s] %s\n", n.ID, n.Body)
			}
			return tools.Result{Content: b.String()}, nil
		},
	})
}
