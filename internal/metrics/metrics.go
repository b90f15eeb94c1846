// Package metrics collects Prometheus counters, histograms, and gauges for
// every subsystem the admin API exposes a snapshot of: tool execution, LLM
// usage and cost, approvals, task outcomes, and the HTTP control plane
// itself.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the process-global metrics singleton, constructed once at
// startup and threaded into every collaborator that wants to record against
// it.
type Metrics struct {
	// ToolCalls counts tool invocations by name and outcome (ok|error|blocked).
	ToolCalls *prometheus.CounterVec

	// ToolDuration measures tool execution latency in seconds.
	ToolDuration *prometheus.HistogramVec

	// LLMRequests counts completion calls by provider, model, and status.
	LLMRequests *prometheus.CounterVec

	// LLMTokens tracks token usage by provider, model, and direction (input|output).
	LLMTokens *prometheus.CounterVec

	// LLMCostUSD accumulates estimated spend by provider and model.
	LLMCostUSD *prometheus.CounterVec

	// DailyCostUSD is a gauge snapshot of the current day's running total,
	// mirrored from costs.Manager.Today() rather than accumulated here.
	DailyCostUSD prometheus.Gauge

	// ApprovalLatency measures the time between a request's creation and its
	// resolution, in seconds.
	ApprovalLatency prometheus.Histogram

	// ApprovalOutcomes counts resolved approvals by decision (approved|denied|expired).
	ApprovalOutcomes *prometheus.CounterVec

	// TaskOutcomes counts tasks reaching a terminal state, by status.
	TaskOutcomes *prometheus.CounterVec

	// TriggerFires counts trigger firings by type.
	TriggerFires *prometheus.CounterVec

	// HTTPRequests counts admin API requests by method, path, and status code.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration measures admin API request latency in seconds.
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers every metric against the default registry. This
// should run once, at process startup.
func New() *Metrics {
	return &Metrics{
		ToolCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentkernel_tool_calls_total",
				Help: "Total tool invocations by tool name and outcome",
			},
			[]string{"tool", "outcome"},
		),
		ToolDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentkernel_tool_duration_seconds",
				Help:    "Tool execution duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"tool"},
		),
		LLMRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentkernel_llm_requests_total",
				Help: "LLM completion calls by provider, model, and status",
			},
			[]string{"provider", "model", "status"},
		),
		LLMTokens: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentkernel_llm_tokens_total",
				Help: "LLM token usage by provider, model, and direction",
			},
			[]string{"provider", "model", "direction"},
		),
		LLMCostUSD: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentkernel_llm_cost_usd_total",
				Help: "Estimated LLM spend in USD by provider and model",
			},
			[]string{"provider", "model"},
		),
		DailyCostUSD: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentkernel_daily_cost_usd",
				Help: "Current day's estimated spend in USD",
			},
		),
		ApprovalLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentkernel_approval_latency_seconds",
				Help:    "Time from approval request creation to resolution",
				Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 3600},
			},
		),
		ApprovalOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentkernel_approval_outcomes_total",
				Help: "Resolved approvals by decision",
			},
			[]string{"decision"},
		),
		TaskOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentkernel_task_outcomes_total",
				Help: "Tasks reaching a terminal state, by status",
			},
			[]string{"status"},
		),
		TriggerFires: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentkernel_trigger_fires_total",
				Help: "Trigger firings by trigger type",
			},
			[]string{"type"},
		),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentkernel_http_requests_total",
				Help: "Admin API requests by method, path, and status",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentkernel_http_request_duration_seconds",
				Help:    "Admin API request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "path"},
		),
	}
}

// RecordToolCall records one tool execution's outcome and duration.
func (m *Metrics) RecordToolCall(tool, outcome string, durationSeconds float64) {
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(durationSeconds)
}

// RecordLLMRequest records one completion call's cost and token usage.
func (m *Metrics) RecordLLMRequest(provider, model, status string, inputTokens, outputTokens int64, costUSD float64) {
	m.LLMRequests.WithLabelValues(provider, model, status).Inc()
	if inputTokens > 0 {
		m.LLMTokens.WithLabelValues(provider, model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.LLMTokens.WithLabelValues(provider, model, "output").Add(float64(outputTokens))
	}
	if costUSD > 0 {
		m.LLMCostUSD.WithLabelValues(provider, model).Add(costUSD)
	}
}

// SetDailyCost mirrors the cost manager's running total into the gauge.
func (m *Metrics) SetDailyCost(usd float64) {
	m.DailyCostUSD.Set(usd)
}

// RecordApprovalResolved records an approval's resolution latency and decision.
func (m *Metrics) RecordApprovalResolved(decision string, latencySeconds float64) {
	m.ApprovalOutcomes.WithLabelValues(decision).Inc()
	m.ApprovalLatency.Observe(latencySeconds)
}

// RecordTaskOutcome records a task reaching a terminal status.
func (m *Metrics) RecordTaskOutcome(status string) {
	m.TaskOutcomes.WithLabelValues(status).Inc()
}

// RecordTriggerFire records one trigger firing.
func (m *Metrics) RecordTriggerFire(triggerType string) {
	m.TriggerFires.WithLabelValues(triggerType).Inc()
}

// RecordHTTPRequest records one admin API request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(durationSeconds)
}

// Handler returns the Prometheus scrape handler for /admin/api/metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
