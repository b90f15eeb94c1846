package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/kodokalabs/tetsuo.26/internal/security"
	"github.com/kodokalabs/tetsuo.26/internal/security/ssrf"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

const browserActionTimeout = 30 * time.Second

// browserArgs is the union of fields every browser_action supports; only
// the ones relevant to Action are consulted.
type browserArgs struct {
	Action   string `json:"action"`
	URL      string `json:"url"`
	Selector string `json:"selector"`
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

func registerBrowserTool(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name: "browser_action",
			Description: "Drive a headless browser: navigate, screenshot, click(selector), " +
				"type(selector,text), get_text. Every subresource request is SSRF-validated before it proceeds.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"action":   map[string]any{"type": "string", "enum": []string{"navigate", "screenshot", "click", "type", "get_text"}},
					"url":      map[string]any{"type": "string"},
					"selector": map[string]any{"type": "string"},
					"text":     map[string]any{"type": "string"},
					"filename": map[string]any{"type": "string"},
				},
				"required": []string{"action"},
			}),
			Risk:     tools.RiskMedium,
			Category: tools.CategoryBrowser,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			var args browserArgs
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			if args.Action == "navigate" {
				if err := ssrf.ValidateURL(ctx, args.URL, nil); err != nil {
					return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
				}
			}
			return runBrowserAction(ctx, deps, args)
		},
	})
}

func runBrowserAction(parent context.Context, deps *Deps, args browserArgs) (tools.Result, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, chromedp.DefaultExecAllocatorOptions[:]...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()
	taskCtx, cancel := context.WithTimeout(taskCtx, browserActionTimeout)
	defer cancel()

	// Every subresource request is paused and re-validated against the SSRF
	// rules before being allowed to continue, per the request-interception
	// contract; requests to blocked hosts are failed outright.
	chromedp.ListenTarget(taskCtx, func(ev any) {
		if ev, ok := ev.(*fetch.EventRequestPaused); ok {
			go func() {
				if err := ssrf.ValidateURL(taskCtx, ev.Request.URL, nil); err != nil {
					_ = chromedp.Run(taskCtx, fetch.FailRequest(ev.RequestID, network.ErrorReasonBlockedByClient))
					return
				}
				_ = chromedp.Run(taskCtx, fetch.ContinueRequest(ev.RequestID))
			}()
		}
	})
	if err := chromedp.Run(taskCtx, fetch.Enable().WithPatterns([]*fetch.RequestPattern{{URLPattern: "*"}})); err != nil {
		return tools.Result{Content: "Error: enable request interception: " + err.Error(), IsError: true}, nil
	}

	switch args.Action {
	case "navigate":
		if err := chromedp.Run(taskCtx, chromedp.Navigate(args.URL)); err != nil {
			return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
		}
		return tools.Result{Content: "navigated to " + args.URL}, nil

	case "screenshot":
		var buf []byte
		if err := chromedp.Run(taskCtx, chromedp.FullScreenshot(&buf, 90)); err != nil {
			return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
		}
		name := args.Filename
		if name == "" {
			name = "screenshot.png"
		}
		safe, err := deps.Jail.SafePath(name)
		if err != nil {
			return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
		}
		if err := writeScreenshot(safe, buf); err != nil {
			return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
		}
		return tools.Result{Content: fmt.Sprintf("saved screenshot to %s", filepath.Base(safe))}, nil

	case "click":
		if err := chromedp.Run(taskCtx, chromedp.Click(args.Selector, chromedp.ByQuery)); err != nil {
			return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
		}
		return tools.Result{Content: "clicked " + args.Selector}, nil

	case "type":
		if err := chromedp.Run(taskCtx, chromedp.SendKeys(args.Selector, args.Text, chromedp.ByQuery)); err != nil {
			return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
		}
		return tools.Result{Content: "typed into " + args.Selector}, nil

	case "get_text":
		var text string
		if err := chromedp.Run(taskCtx, chromedp.Text(args.Selector, &text, chromedp.ByQuery)); err != nil {
			return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
		}
		framed, err := security.FrameUntrustedContent(args.Selector, text)
		if err != nil {
			return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
		}
		return tools.Result{Content: framed}, nil

	default:
		return tools.Result{Content: "Error: unknown browser action " + args.Action, IsError: true}, nil
	}
}

func writeScreenshot(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
