package locale

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	localDateRe = regexp.MustCompile(`\b(\d{1,2})[.\-/]\s*(\d{1,2})[.\-/]\s*(\d{2,4})`)
)

// ParseDate reads a date in Croatian day-first notation ("15.03.2024",
// "15. 3. 24", "15/03/2024") or ISO form and returns it as yyyy-mm-dd.
// Two-digit years are mapped into 2000..2099. Out-of-range day or month
// values report ok=false.
func ParseDate(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	if m := isoDateRe.FindStringSubmatch(raw); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3], true
	}

	m := localDateRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if year < 100 {
		year += 2000
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// ParseDatePtr is ParseDate with a pointer result for optional fields.
func ParseDatePtr(raw string) *string {
	if v, ok := ParseDate(raw); ok {
		return &v
	}
	return nil
}
