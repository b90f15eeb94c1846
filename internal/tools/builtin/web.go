package builtin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/kodokalabs/tetsuo.26/internal/security"
	"github.com/kodokalabs/tetsuo.26/internal/security/ssrf"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

const (
	webFetchTimeout    = 15 * time.Second
	webFetchMaxBody    = 30000
)

func registerWebTools(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "web_fetch",
			Description: "Fetch an http(s) URL, validated against SSRF rules, and return its body as framed untrusted data.",
			Schema:      tools.MarshalSchema(map[string]any{"type": "object", "properties": map[string]any{"url": map[string]any{"type": "string"}}, "required": []string{"url"}}),
			Risk:        tools.RiskLow,
			Category:    tools.CategoryNetwork,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			if err := ssrf.ValidateURL(ctx, args.URL, nil); err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}

			fetchCtx, cancel := context.WithTimeout(ctx, webFetchTimeout)
			defer cancel()
			req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, args.URL, nil)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(io.LimitReader(resp.Body, webFetchMaxBody+1))
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			truncated := string(body)
			if len(truncated) > webFetchMaxBody {
				truncated = truncated[:webFetchMaxBody]
			}

			framed, err := security.FrameUntrustedContent(args.URL, truncated)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: framed}, nil
		},
	})
}
