package metrics

import (
	"net/http/httptest"
	"testing"
)

// New registers every instrument against the default Prometheus registry,
// so a single test function exercises one shared instance rather than
// constructing New() more than once per process.
func TestMetrics(t *testing.T) {
	m := New()

	m.RecordToolCall("read_file", "ok", 0.02)
	m.RecordLLMRequest("anthropic", "claude-sonnet-4-5", "ok", 120, 45, 0.0021)
	m.SetDailyCost(1.23)
	m.RecordApprovalResolved("approved", 12.5)
	m.RecordTaskOutcome("completed")
	m.RecordTriggerFire("cron")
	m.RecordHTTPRequest("GET", "/admin/api/tasks", "200", 0.003)

	req := httptest.NewRequest("GET", "/admin/api/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !contains(body, "agentkernel_trigger_fires_total") {
		t.Fatalf("expected trigger fire metric in scrape output, got: %s", body)
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
