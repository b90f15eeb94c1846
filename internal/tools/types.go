// Package tools implements the tool registry: a name-keyed map of callable
// capabilities the session loop exposes to the LLM, each wrapped in the
// audit/truncation/error-kind envelope described by the component design.
package tools

import (
	"context"
	"encoding/json"
)

// Risk labels a tool's blast radius, used by the autonomy policy to decide
// whether a call needs approval.
type Risk string

const (
	RiskLow      Risk = "low"
	RiskMedium   Risk = "medium"
	RiskHigh     Risk = "high"
	RiskCritical Risk = "critical"
)

// Category groups tools for the runtime permission booleans (settings).
type Category string

const (
	CategoryFilesystem  Category = "filesystem"
	CategoryShell       Category = "shell"
	CategoryNetwork     Category = "network"
	CategoryBrowser     Category = "browser"
	CategoryMemory      Category = "memory"
	CategoryScheduling  Category = "scheduling"
	CategoryTask        Category = "task"
	CategoryCost        Category = "cost"
	CategoryTrigger     Category = "trigger"
	CategoryIntegration Category = "integration"
	CategorySystem      Category = "system"
)

// Result is what a tool handler returns; IsError routes it through the
// SecurityError/ValidationError tool-result convention rather than a Go
// error, per the propagation policy.
type Result struct {
	Content string
	IsError bool
}

// Definition is a tool's advertised shape: name, natural-language
// description, and an opaque JSON-Schema parameter object passed through to
// the LLM unparsed.
type Definition struct {
	Name        string
	Description string
	Schema      json.RawMessage
	Risk        Risk
	Category    Category
}

// Handler executes one tool call given its raw JSON parameters.
type Handler func(ctx context.Context, call Call) (Result, error)

// Call is one invocation: the tool name, its call id (for ordering
// tool-result messages), and its raw JSON input.
type Call struct {
	ID     string
	Name   string
	Input  json.RawMessage
	Channel string
	User   string
}

// Tool bundles a Definition with its Handler.
type Tool struct {
	Definition
	Handler Handler
}
