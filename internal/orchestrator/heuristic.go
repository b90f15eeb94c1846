package orchestrator

import (
	"regexp"
	"strings"
)

var indicatorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\band\b.*\band\b`), // two or more "and"s
	regexp.MustCompile(`(?i)\bsteps?\b`),
	regexp.MustCompile(`(?i)\bfirst\b.*\bthen\b`),
	regexp.MustCompile(`(?i)\bcompare\b.*\bwith\b`),
	regexp.MustCompile(`(?i)\bresearch\b.*\bwrite\b`),
	regexp.MustCompile(`(?i)\banalyze\b.*\breport\b`),
	regexp.MustCompile(`(?i)\b(plan|comprehensive|multiple)\b`),
}

// ShouldOrchestrate implements the automatic-orchestration heuristic: word
// count over 100 triggers on its own, otherwise two or more indicator
// patterns must match.
func ShouldOrchestrate(description string) bool {
	if len(strings.Fields(description)) > 100 {
		return true
	}
	matches := 0
	for _, pattern := range indicatorPatterns {
		if pattern.MatchString(description) {
			matches++
			if matches >= 2 {
				return true
			}
		}
	}
	return false
}
