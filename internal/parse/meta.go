package parse

import (
	"regexp"
	"strings"

	"github.com/rubilakse/docparse/internal/entity"
	"github.com/rubilakse/docparse/internal/locale"
)

// Pattern tables run in order and the first hit wins, so specific labels
// must come before generic ones ("Datum dokumenta" before "Datum").

var numberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Ra[čc]un|Faktura)\s*(?:br(?:oj)?)?\.?\s*[:.]?\s*([A-Z0-9][A-Z0-9\-/]+)`),
	regexp.MustCompile(`(?i)(?:Predra[čc]un|Ponuda)\s*(?:br(?:oj)?)?\.?\s*[:.]?\s*([A-Z0-9][A-Z0-9\-/]+)`),
	regexp.MustCompile(`(?i)(?:Broj|Number|No)\s*[:.]\s*([A-Z0-9][A-Z0-9\-/]*)`),
}

var issueDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Datum\s+(?:dokumenta|ra[čc]una|izdavanja)\s*[:.]?\s*([0-9][0-9.\-/\s]+)`),
	regexp.MustCompile(`(?i)Datum\s*[:.]?\s*([0-9][0-9.\-/\s]+)`),
}

var dueDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Dospije[ćc]e|Valuta\s+pla[ćc]anja|Rok\s+pla[ćc]anja|Datum\s+dospije[ćc]a)\s*[:.]?\s*([0-9][0-9.\-/\s]+)`),
}

var placePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Mjesto\s+izdavanja\s*[:.]?\s*([^\n,]+)`),
	regexp.MustCompile(`(?i)Mjesto\s*[:.]\s*([^\n,]+)`),
}

var paymentTermsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Na[čc]in\s+pla[ćc]anja\s*[:.]?\s*([^\n]+)`),
	regexp.MustCompile(`(?i)Uvjeti\s+pla[ćc]anja\s*[:.]?\s*([^\n]+)`),
}

var deliveryTermsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Rok|Na[čc]in)\s+isporuke\s*[:.]?\s*([^\n]+)`),
	regexp.MustCompile(`(?i)Paritet\s*[:.]?\s*([^\n]+)`),
}

// ExtractMeta scans text for header-level fields.
func ExtractMeta(text string) entity.DocumentMeta {
	meta := entity.DocumentMeta{
		DocType:  DetectDocType(text),
		Currency: DetectCurrency(text),
	}

	meta.Number = firstCapture(text, numberPatterns)
	meta.Place = firstCapture(text, placePatterns)
	meta.PaymentTerms = firstCapture(text, paymentTermsPatterns)
	meta.DeliveryTerms = firstCapture(text, deliveryTermsPatterns)

	if raw := firstCapture(text, issueDatePatterns); raw != nil {
		meta.IssueDate = locale.ParseDatePtr(*raw)
	}
	if raw := firstCapture(text, dueDatePatterns); raw != nil {
		meta.DueDate = locale.ParseDatePtr(*raw)
	}

	return meta
}

func firstCapture(text string, patterns []*regexp.Regexp) *string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			v := strings.TrimSpace(m[1])
			if v != "" {
				return &v
			}
		}
	}
	return nil
}
