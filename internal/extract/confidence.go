package extract

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{1,2}[.\-/]\d{1,2}[.\-/]\d{2,4}\b`)
	reCurr   = regexp.MustCompile(`\b(eur|hrk|kn)\b|€`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(\.\d{3})*(,\d{2})\b|\b\d+[.,]\d{2}\b`)
)

// heuristicConfidence scores text that arrived without an engine
// confidence, from artifacts a business document should contain:
// a date, a currency marker and at least one money amount.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reCurr.MatchString(txtL) {
		score += 0.15
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
