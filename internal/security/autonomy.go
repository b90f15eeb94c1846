package security

// DangerousTools is the tool-name set that requires approval at autonomy
// level "medium". Level "low" asks for every call regardless of this set;
// level "high" never asks.
var DangerousTools = map[string]bool{
	"run_shell":        true,
	"write_file":       true,
	"email_send":       true,
	"mastodon_post":    true,
	"reddit_post":      true,
	"open_application": true,
	"clipboard_write":  true,
}

// RequiresApproval decides whether a tool call needs human sign-off under
// the named autonomy level.
func RequiresApproval(autonomyLevel, toolName string) bool {
	switch autonomyLevel {
	case "high":
		return false
	case "medium":
		return DangerousTools[toolName]
	default: // "low" and anything unrecognized
		return true
	}
}
