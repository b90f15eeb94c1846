// Package audit implements the append-only JSON-lines audit log, one file
// per calendar date, described in the security guard contract.
package audit

import "time"

// Entry is a single audit record.
type Entry struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	Tool         string    `json:"tool,omitempty"`
	Input        string    `json:"input,omitempty"`
	ResultPreview string   `json:"result_preview,omitempty"`
	Blocked      bool      `json:"blocked"`
	Reason       string    `json:"reason,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	Channel      string    `json:"channel,omitempty"`
}

// maxInputChars and maxResultChars bound the size of fields persisted to the
// log so a single call cannot blow up the audit file.
const (
	maxInputChars  = 2000
	maxResultChars = 500
)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
