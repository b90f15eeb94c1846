package orchestrator

import "testing"

func TestShouldOrchestrate(t *testing.T) {
	cases := []struct {
		name string
		desc string
		want bool
	}{
		{"short simple request", "what time is it", false},
		{"single indicator only", "please research this topic and write a summary", false},
		{"two indicators", "research three renewable energy sources and write a comprehensive comparison report", true},
		{"steps and first-then", "first do the setup steps, then clean up", true},
		{"over word count", wordsOf(101), true},
		{"under word count", wordsOf(99), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldOrchestrate(tc.desc); got != tc.want {
				t.Errorf("ShouldOrchestrate(%q) = %v, want %v", tc.desc, got, tc.want)
			}
		})
	}
}

func wordsOf(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			s += " "
		}
		s += "word"
	}
	return s
}
