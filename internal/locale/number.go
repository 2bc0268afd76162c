// Package locale normalizes Croatian/European number and date notation.
package locale

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberJunk     = regexp.MustCompile(`[^\d.,\-]`)
	thousandsDot   = regexp.MustCompile(`\.(\d{3})\b`)
	thousandsComma = regexp.MustCompile(`,(\d{3})\b`)
)

// ParseNumber reads a money or quantity token written in Croatian/European
// notation ("1.234,56") or plain decimal notation ("1234.56") and returns
// its value. It never panics; unreadable input reports ok=false.
//
// When both separators appear, whichever comes last is the decimal mark.
// A lone comma is always decimal. A lone dot is a thousands separator only
// when followed by exactly three digits.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	// strip currency symbols, letters and inner whitespace
	s = numberJunk.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." || s == "," {
		return 0, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// comma only: decimal mark, after dropping any comma grouping
		if strings.Count(s, ",") > 1 {
			s = thousandsComma.ReplaceAllString(s, "$1")
		}
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		// dot only: grouping when followed by exactly three digits,
		// so "1.234" becomes 1234 but "724.99" stays a decimal
		s = thousandsDot.ReplaceAllString(s, "$1")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseNumberPtr is ParseNumber with a pointer result for optional fields.
func ParseNumberPtr(raw string) *float64 {
	if v, ok := ParseNumber(raw); ok {
		return &v
	}
	return nil
}
