package parse

import (
	"regexp"
	"strings"

	"github.com/rubilakse/docparse/internal/entity"
)

var (
	oibRe      = regexp.MustCompile(`\bOIB[:\s]*([0-9]{11})\b`)
	ibanRe     = regexp.MustCompile(`\bIBAN[:\s]*([A-Z]{2}\d{19}|HR[0-9]{19})\b`)
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	companyRe  = regexp.MustCompile(`(?i)\b(d\.o\.o\.|d\.d\.|j\.d\.o\.o\.|obrt)`)
	blankSplit = regexp.MustCompile(`\n\s*\n`)
)

// Party warnings attached to the parse result.
const (
	// WarnAmbiguousParty is attached when tax IDs were found but seller
	// and buyer could not be told apart.
	WarnAmbiguousParty = "party roles ambiguous, seller and buyer left empty"
	// WarnSinglePartyRole is attached when only one tax ID block exists
	// and its role had to be guessed.
	WarnSinglePartyRole = "single tax id block, party role assigned heuristically"
)

// ExtractParties locates transaction parties by their OIB tax numbers.
// The text is cut into blank-line blocks; each block holding an OIB
// becomes a candidate. Two candidates resolve to seller then buyer in
// reading order. A single candidate is assigned by buyerPattern and
// flagged as a guess, any other count leaves both parties empty with a
// warning.
func ExtractParties(text string, buyerPattern *regexp.Regexp) (seller, buyer entity.Party, warnings []string) {
	blocks := blankSplit.Split(text, -1)

	var candidates []entity.Party
	for _, block := range blocks {
		m := oibRe.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		candidates = append(candidates, partyFromBlock(block, m[1]))
	}

	switch len(candidates) {
	case 0:
		return entity.Party{}, entity.Party{}, nil
	case 1:
		p := candidates[0]
		if buyerPattern != nil && buyerPattern.MatchString(p.RawBlock) {
			return entity.Party{}, p, []string{WarnSinglePartyRole}
		}
		return p, entity.Party{}, []string{WarnSinglePartyRole}
	case 2:
		return candidates[0], candidates[1], nil
	default:
		return entity.Party{}, entity.Party{}, []string{WarnAmbiguousParty}
	}
}

// partyFromBlock fills party fields from one address block.
func partyFromBlock(block, oib string) entity.Party {
	p := entity.Party{RawBlock: strings.TrimSpace(block), TaxID: &oib}

	lines := strings.Split(block, "\n")
	var firstLong string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if companyRe.MatchString(trimmed) {
			name := trimmed
			p.Name = &name
			break
		}
		if firstLong == "" && len([]rune(trimmed)) > 5 && !strings.Contains(trimmed, "OIB") {
			firstLong = trimmed
		}
	}
	if p.Name == nil && firstLong != "" {
		p.Name = &firstLong
	}

	if m := ibanRe.FindStringSubmatch(block); m != nil {
		iban := m[1]
		p.IBAN = &iban
	}
	if m := emailRe.FindString(block); m != "" {
		email := m
		p.Email = &email
	}

	return p
}
