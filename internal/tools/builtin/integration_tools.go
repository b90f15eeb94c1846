package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/go-github/v69/github"

	"github.com/kodokalabs/tetsuo.26/internal/security"
	"github.com/kodokalabs/tetsuo.26/internal/tools"
)

// requireIntegration checks both the runtime permission flag and credential
// presence before letting an integration tool run; integrations are opt-in
// twice over, since they reach outside the sandbox entirely.
func requireIntegration(deps *Deps, credentialKey string) (string, error) {
	settings := deps.Settings.Get()
	if !settings.ToolPermissions.Integrations {
		return "", fmt.Errorf("integrations are disabled in current settings")
	}
	cred, ok := settings.Credentials[credentialKey]
	if !ok || cred == "" {
		return "", fmt.Errorf("missing credential %q", credentialKey)
	}
	return cred, nil
}

func registerIntegrationTools(reg *tools.Registry, deps *Deps) {
	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "github_create_issue",
			Description: "Create an issue on a GitHub repository using the configured github token.",
			Schema: tools.MarshalSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"owner": map[string]any{"type": "string"},
					"repo":  map[string]any{"type": "string"},
					"title": map[string]any{"type": "string"},
					"body":  map[string]any{"type": "string"},
				},
				"required": []string{"owner", "repo", "title"},
			}),
			Risk:     tools.RiskMedium,
			Category: tools.CategoryIntegration,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			token, err := requireIntegration(deps, "github_token")
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			var args struct {
				Owner, Repo, Title, Body string
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			client := github.NewClient(nil).WithAuthToken(token)
			issue, _, err := client.Issues.Create(ctx, args.Owner, args.Repo, &github.IssueRequest{
				Title: &args.Title,
				Body:  &args.Body,
			})
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			return tools.Result{Content: fmt.Sprintf("created %s#%d", args.Repo, issue.GetNumber())}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "github_list_issues",
			Description: "List open issues on a GitHub repository using the configured github token.",
			Schema: tools.MarshalSchema(map[string]any{
				"type":       "object",
				"properties": map[string]any{"owner": map[string]any{"type": "string"}, "repo": map[string]any{"type": "string"}},
				"required":   []string{"owner", "repo"},
			}),
			Risk:     tools.RiskLow,
			Category: tools.CategoryIntegration,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			token, err := requireIntegration(deps, "github_token")
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			var args struct {
				Owner, Repo string
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			client := github.NewClient(nil).WithAuthToken(token)
			issues, _, err := client.Issues.ListByRepo(ctx, args.Owner, args.Repo, &github.IssueListByRepoOptions{State: "open"})
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			data, _ := json.Marshal(issues)
			framed, ferr := security.FrameUntrustedContent(args.Owner+"/"+args.Repo, string(data))
			if ferr != nil {
				return tools.Result{Content: "Error: " + ferr.Error(), IsError: true}, nil
			}
			return tools.Result{Content: framed}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "mastodon_post",
			Description: "Post a status update to the configured Mastodon instance.",
			Schema: tools.MarshalSchema(map[string]any{
				"type":       "object",
				"properties": map[string]any{"status": map[string]any{"type": "string"}},
				"required":   []string{"status"},
			}),
			Risk:     tools.RiskMedium,
			Category: tools.CategoryIntegration,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			token, err := requireIntegration(deps, "mastodon_token")
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			instance, ok := deps.Settings.Get().Credentials["mastodon_instance"]
			if !ok || instance == "" {
				return tools.Result{Content: "Error: missing credential \"mastodon_instance\"", IsError: true}, nil
			}
			var args struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			body, _ := json.Marshal(map[string]string{"status": args.Status})
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://"+instance+"/api/v1/statuses", bytes.NewReader(body))
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				return tools.Result{Content: fmt.Sprintf("Error: mastodon returned %s", resp.Status), IsError: true}, nil
			}
			return tools.Result{Content: "posted to " + instance}, nil
		},
	})

	reg.Register(tools.Tool{
		Definition: tools.Definition{
			Name:        "reddit_search",
			Description: "Search Reddit posts matching a query using the configured app credentials.",
			Schema: tools.MarshalSchema(map[string]any{
				"type":       "object",
				"properties": map[string]any{"query": map[string]any{"type": "string"}, "subreddit": map[string]any{"type": "string"}},
				"required":   []string{"query"},
			}),
			Risk:     tools.RiskLow,
			Category: tools.CategoryIntegration,
		},
		Handler: func(ctx context.Context, call tools.Call) (tools.Result, error) {
			if _, err := requireIntegration(deps, "reddit_token"); err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			var args struct {
				Query     string `json:"query"`
				Subreddit string `json:"subreddit"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return tools.Result{Content: "Error: invalid arguments: " + err.Error(), IsError: true}, nil
			}
			url := "https://www.reddit.com/search.json?q=" + args.Query
			if args.Subreddit != "" {
				url = "https://www.reddit.com/r/" + args.Subreddit + "/search.json?q=" + args.Query + "&restrict_sr=1"
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			req.Header.Set("User-Agent", "agentkerneld/1.0")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			defer resp.Body.Close()
			var body bytes.Buffer
			if _, err := body.ReadFrom(resp.Body); err != nil {
				return tools.Result{Content: "Error: " + err.Error(), IsError: true}, nil
			}
			framed, ferr := security.FrameUntrustedContent(url, body.String())
			if ferr != nil {
				return tools.Result{Content: "Error: " + ferr.Error(), IsError: true}, nil
			}
			return tools.Result{Content: framed}, nil
		},
	})
}
