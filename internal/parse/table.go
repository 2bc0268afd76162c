package parse

import (
	"regexp"
	"strings"

	"github.com/rubilakse/docparse/internal/entity"
	"github.com/rubilakse/docparse/internal/locale"
)

const headerScanLimit = 400

// headerKeywordGroups score a candidate header line. A line hitting at
// least two groups is taken as the start of the item table.
var headerKeywordGroups = []*regexp.Regexp{
	regexp.MustCompile(`SIFRA|ARTIKL|NAZIV|OPIS`),
	regexp.MustCompile(`JMJ|JM\b|J\.MJ\.|JED`),
	regexp.MustCompile(`KOLICINA|KOL\b`),
	regexp.MustCompile(`CIJENA|C\.JED`),
	regexp.MustCompile(`PDV|RABAT|UKUPNO|IZNOS`),
}

// totalsStartRe ends table scanning once the summary section begins.
var totalsStartRe = regexp.MustCompile(`^(OSNOVICA|PDV|UKUPNO|SVEUKUPNO|ZA NAPLATU)`)

var (
	columnSplitRe = regexp.MustCompile(`\t| {2,}`)
	unitTokenRe   = regexp.MustCompile(`(?i)^(kom|pcs|m2|m|kg|rol|pak|par|jmj|jm)\.?$`)
	numericRe     = regexp.MustCompile(`^-?[\d.,]+$`)
	percentRe     = regexp.MustCompile(`^-?[\d.,]+\s?%$`)
	rowStartRe    = regexp.MustCompile(`(?i)^(Pozicija|Position|Pos\.?|Item)\b`)
	codeRe        = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-./]{2,}$`)
)

// WarnDegradedLines is attached when only the structureless fallback rows
// were available and they looked like mis-split prose.
const WarnDegradedLines = "line items could not be recovered from table layout"

// ExtractLineItems finds the goods table and parses its rows. When no
// header line scores high enough it falls back to position-marker blocks,
// and rejects that result entirely if it only produced a couple of
// overlong rows.
func ExtractLineItems(text string, cfg Config) ([]entity.LineItem, []string) {
	lines := strings.Split(text, "\n")

	headerIdx := findTableHeader(lines)
	if headerIdx >= 0 {
		items := parseTableRows(lines[headerIdx+1:], cfg)
		if len(items) > 0 {
			return items, nil
		}
	}

	items := fallbackRows(lines, cfg)
	if rejectDegraded(items, cfg) {
		return nil, []string{WarnDegradedLines}
	}
	return items, nil
}

// findTableHeader scans the leading portion of the document for a line
// matching at least two header keyword groups.
func findTableHeader(lines []string) int {
	limit := len(lines)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		if HeaderScore(lines[i]) >= 2 {
			return i
		}
	}
	return -1
}

// HeaderScore counts how many keyword groups a line hits after diacritic
// folding.
func HeaderScore(line string) int {
	folded := foldUpper(line)
	score := 0
	for _, re := range headerKeywordGroups {
		if re.MatchString(folded) {
			score++
		}
	}
	return score
}

// parseTableRows reads item rows until the totals section or an empty
// stretch ends the table.
func parseTableRows(lines []string, cfg Config) []entity.LineItem {
	var items []entity.LineItem
	blanks := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			blanks++
			if blanks >= 3 && len(items) > 0 {
				break
			}
			continue
		}
		blanks = 0

		if totalsStartRe.MatchString(foldUpper(trimmed)) {
			break
		}

		if item, ok := parseRow(trimmed, cfg); ok {
			item.Position = len(items) + 1
			items = append(items, item)
			if len(items) >= cfg.MaxLineRows {
				break
			}
		}
	}
	return items
}

// parseRow splits one table line into columns and derives the item fields
// from token shape: the unit token anchors the quantity just before it,
// the trailing numeric tokens are unit price and amount.
func parseRow(line string, cfg Config) (entity.LineItem, bool) {
	cols := columnSplitRe.Split(line, -1)
	tokens := make([]string, 0, len(cols))
	for _, c := range cols {
		c = strings.TrimSpace(c)
		if c != "" {
			tokens = append(tokens, c)
		}
	}
	if len(tokens) < 2 {
		return entity.LineItem{}, false
	}

	item := entity.LineItem{}
	unitIdx := -1
	for i, tok := range tokens {
		if unitTokenRe.MatchString(tok) {
			unit := strings.TrimSuffix(strings.ToLower(tok), ".")
			item.Unit = &unit
			unitIdx = i
			break
		}
	}

	if unitIdx > 0 && numericRe.MatchString(tokens[unitIdx-1]) {
		item.Quantity = locale.ParseNumberPtr(tokens[unitIdx-1])
	}
	// some layouts put the quantity after the unit column instead
	if item.Quantity == nil && unitIdx >= 0 && unitIdx+1 < len(tokens) && numericRe.MatchString(tokens[unitIdx+1]) {
		item.Quantity = locale.ParseNumberPtr(tokens[unitIdx+1])
	}

	// a rabat or pdv keyword earlier on the line decides what a percent
	// token means, a bare percentage is taken as the VAT rate
	percentIsDiscount := false
	for _, tok := range tokens {
		folded := foldUpper(tok)
		if strings.Contains(folded, "RABAT") || strings.Contains(folded, "POPUST") {
			percentIsDiscount = true
		} else if strings.Contains(folded, "PDV") {
			percentIsDiscount = false
		}
		if !percentRe.MatchString(tok) {
			continue
		}
		v := locale.ParseNumberPtr(strings.TrimSpace(strings.TrimSuffix(tok, "%")))
		if v == nil {
			continue
		}
		if percentIsDiscount {
			if item.DiscountPercent == nil {
				item.DiscountPercent = v
			}
		} else if item.VATPercent == nil {
			item.VATPercent = v
		}
	}

	var numericIdx []int
	for i, tok := range tokens {
		if numericRe.MatchString(tok) && locale.ParseNumberPtr(tok) != nil {
			numericIdx = append(numericIdx, i)
		}
	}

	// last two numeric tokens are unit price and line amount
	if n := len(numericIdx); n >= 2 {
		item.UnitPrice = locale.ParseNumberPtr(tokens[numericIdx[n-2]])
		item.AmountNet = locale.ParseNumberPtr(tokens[numericIdx[n-1]])
	} else if n == 1 && numericIdx[0] != unitIdx-1 {
		item.AmountNet = locale.ParseNumberPtr(tokens[numericIdx[0]])
	}

	// name is the widest non-numeric token, a leading code-shaped token
	// before it becomes the article code
	nameIdx := -1
	for i, tok := range tokens {
		if numericRe.MatchString(tok) || i == unitIdx {
			continue
		}
		if nameIdx < 0 || len(tok) > len(tokens[nameIdx]) {
			nameIdx = i
		}
	}
	if nameIdx < 0 {
		return entity.LineItem{}, false
	}
	item.Name = truncateName(tokens[nameIdx], cfg.LongNameLimit)

	if nameIdx != 0 && unitIdx != 0 && codeRe.MatchString(tokens[0]) && !numericRe.MatchString(tokens[0]) {
		code := tokens[0]
		item.Code = &code
	}

	// a bare name with no numbers anywhere is not an item row
	if item.Quantity == nil && item.UnitPrice == nil && item.AmountNet == nil {
		return entity.LineItem{}, false
	}
	return item, true
}

// markerOnlyRe matches a position marker line that carries nothing but
// the marker and its ordinal.
var markerOnlyRe = regexp.MustCompile(`(?i)^(Pozicija|Position|Pos\.?|Item)\b[\s.:]*\d*\.?$`)

// fallbackRows splits on position markers when no table header exists.
// Each block contributes only its first descriptive line as a name-only
// row, capped at MaxLineRows. Without any marker the result stays empty.
func fallbackRows(lines []string, cfg Config) []entity.LineItem {
	var items []entity.LineItem
	var current []string

	flush := func() {
		block := current
		current = nil
		if len(block) == 0 || len(items) >= cfg.MaxLineRows {
			return
		}
		name := ""
		for _, l := range block {
			if markerOnlyRe.MatchString(l) || len([]rune(l)) < 3 {
				continue
			}
			name = l
			break
		}
		if name == "" {
			return
		}
		items = append(items, entity.LineItem{
			Position: len(items) + 1,
			Name:     truncateName(name, cfg.LongNameLimit),
		})
	}

	started := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if rowStartRe.MatchString(trimmed) {
			flush()
			started = true
			current = append(current, trimmed)
			continue
		}
		if started && trimmed != "" {
			current = append(current, trimmed)
		}
	}
	flush()
	return items
}

// rejectDegraded reports whether a fallback result is a handful of rows
// that all hit the name length cap, which means prose was mis-split.
func rejectDegraded(items []entity.LineItem, cfg Config) bool {
	if len(items) == 0 || len(items) > cfg.MaxSuspectRows {
		return false
	}
	for _, it := range items {
		if !strings.HasSuffix(it.Name, "…") {
			return false
		}
	}
	return true
}

func truncateName(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit]) + "…"
}
