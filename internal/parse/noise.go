// Package parse extracts structured document fields from flattened text
// using deterministic patterns tuned for Croatian invoices and quotes.
package parse

import (
	"regexp"
	"strings"
)

// noisePatterns match whole lines that window-fabrication estimation
// software prints around its tables. A line matching any of them is
// dropped before parsing.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:Estimation|Optimization)\s+on\s+Page`),
	regexp.MustCompile(`(?i)^Person\s+in\s+Charge`),
	regexp.MustCompile(`(?i)^Date\s*:`),
	regexp.MustCompile(`(?i)^Time\s*:`),
	regexp.MustCompile(`(?i)^Please\s+check`),
	regexp.MustCompile(`(?i)ORGADATA|LogiKal`),
	regexp.MustCompile(`(?i)^Germany\s*:`),
}

var multiBlank = regexp.MustCompile(`\n{3,}`)

// StripNoise removes vendor boilerplate lines and collapses runs of blank
// lines. Applying it twice yields the same result as applying it once.
func StripNoise(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isNoiseLine(trimmed) {
			continue
		}
		kept = append(kept, line)
	}

	out := strings.Join(kept, "\n")
	out = multiBlank.ReplaceAllString(out, "\n\n")
	return out
}

func isNoiseLine(line string) bool {
	if line == "" {
		return false
	}
	for _, re := range noisePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
