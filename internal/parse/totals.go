package parse

import (
	"regexp"
	"strings"

	"github.com/rubilakse/docparse/internal/entity"
	"github.com/rubilakse/docparse/internal/locale"
)

const tailScanLines = 60

const moneyToken = `(-?[\d.,]+)`

var subtotalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)OSNOVICA\s+ZA\s+PDV\s*[:.]?\s*` + moneyToken),
	regexp.MustCompile(`(?i)\bOSNOVICA\s*[:.]?\s*` + moneyToken),
	regexp.MustCompile(`(?i)UKUPNO\s+BEZ\s+PDV[\-A]*\s*[:.]?\s*` + moneyToken),
	regexp.MustCompile(`(?i)\bNETO\s*[:.]?\s*` + moneyToken),
}

var discountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bRABAT\s*[:.]?\s*` + moneyToken),
	regexp.MustCompile(`(?i)\bPOPUST\s*[:.]?\s*` + moneyToken),
}

var vatAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PDV\s*25\s*%\s*[:.]?\s*` + moneyToken),
	regexp.MustCompile(`(?i)IZNOS\s+PDV[\-A]*\s*[:.]?\s*` + moneyToken),
	regexp.MustCompile(`(?i)\bPDV\s*[:.]\s*` + moneyToken),
}

var totalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)SVEUKUPNO\s*[:.]?\s*` + moneyToken),
	regexp.MustCompile(`(?i)ZA\s+NAPLATU\s*[:.]?\s*` + moneyToken),
	regexp.MustCompile(`(?i)UKUPNO\s+S\s+PDV[\-OM]*\s*[:.]?\s*` + moneyToken),
	regexp.MustCompile(`(?i)\bUKUPNO\s*[:.]?\s*` + moneyToken),
	regexp.MustCompile(`(?i)\bTOTAL\s*[:.]?\s*` + moneyToken),
}

// tailPatterns are a last pass over the closing lines of a document when
// no labeled total was found anywhere. Ordered from most to least
// specific; a bare trailing amount is taken only as a final guess.
var tailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:EUR|€)\s*` + moneyToken + `\s*$`),
	regexp.MustCompile(`(?i)` + moneyToken + `\s*(?:EUR|€|HRK|kn)\s*$`),
	regexp.MustCompile(`(-?\d[\d.,]*[,.]\d{2})\s*$`),
}

var (
	zeroVATRe = regexp.MustCompile(`(?i)PDV\s*0\s*%|OSLOBO[ĐD]ENO\s+PDV`)
	vat25Re   = regexp.MustCompile(`(?i)PDV\s*25\s*%`)
)

// ExtractTotals reads the money summary. A printed grand total always
// wins; subtotal plus VAT is derived only when no total was matched
// anywhere, and subtotal is never derived backwards from a total.
func ExtractTotals(text string) entity.Totals {
	totals := entity.Totals{VATRate: 25}
	if zeroVATRe.MatchString(text) {
		totals.VATRate = 0
	}
	// an explicit standard-rate marker outranks an exemption note
	if vat25Re.MatchString(text) {
		totals.VATRate = 25
	}

	totals.Subtotal = firstMoney(text, subtotalPatterns)
	totals.DiscountTotal = firstMoney(text, discountPatterns)
	totals.VATAmount = firstMoney(text, vatAmountPatterns)
	printed := firstMoney(text, totalPatterns)

	switch {
	case printed != nil:
		totals.Total = printed
	case totals.Subtotal != nil && totals.VATAmount != nil:
		sum := *totals.Subtotal + *totals.VATAmount
		totals.Total = &sum
	default:
		totals.Total = tailScan(text)
	}

	if totals.Total == nil && totals.Subtotal != nil && totals.VATAmount == nil && totals.VATRate == 0 {
		totals.Total = totals.Subtotal
	}

	return totals
}

func firstMoney(text string, patterns []*regexp.Regexp) *float64 {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v := locale.ParseNumberPtr(m[1]); v != nil {
				return v
			}
		}
	}
	return nil
}

// tailScan looks through the last lines of the document for an amount
// that plausibly closes it.
func tailScan(text string) *float64 {
	lines := strings.Split(text, "\n")
	if len(lines) > tailScanLines {
		lines = lines[len(lines)-tailScanLines:]
	}

	for _, re := range tailPatterns {
		for i := len(lines) - 1; i >= 0; i-- {
			line := strings.TrimSpace(lines[i])
			if line == "" {
				continue
			}
			if m := re.FindStringSubmatch(line); m != nil {
				if v := locale.ParseNumberPtr(m[1]); v != nil {
					return v
				}
			}
		}
	}
	return nil
}
