package parse

import (
	"regexp"
	"strings"

	"github.com/rubilakse/docparse/constants"
)

// diacriticFold maps Croatian letters onto their ASCII bases so keyword
// matching works on both "Količina" and OCR output that lost the marks.
var diacriticFold = strings.NewReplacer(
	"č", "c", "ć", "c", "ž", "z", "đ", "d", "š", "s",
	"Č", "C", "Ć", "C", "Ž", "Z", "Đ", "D", "Š", "S",
)

// foldUpper returns s uppercased with Croatian diacritics stripped.
func foldUpper(s string) string {
	return strings.ToUpper(diacriticFold.Replace(s))
}

// DetectDocType classifies a document by its most specific type keyword.
// Proforma markers are checked before the plain invoice keyword because
// "PREDRAČUN" contains "RAČUN".
func DetectDocType(text string) constants.DocType {
	folded := foldUpper(text)

	switch {
	case strings.Contains(folded, "PREDRACUN") || strings.Contains(folded, "PROFORMA"):
		return constants.DocTypeProforma
	case strings.Contains(folded, "ESTIMATION") || strings.Contains(folded, "PROCJENA") ||
		strings.Contains(folded, "LOGIKAL"):
		return constants.DocTypeEstimate
	case strings.Contains(folded, "RACUN"):
		return constants.DocTypeInvoice
	case strings.Contains(folded, "PONUDA"):
		return constants.DocTypeQuote
	default:
		return constants.DocTypeOther
	}
}

var currencyEUR = regexp.MustCompile(`(?i)\bEUR\b|€`)
var currencyHRK = regexp.MustCompile(`(?i)\bHRK\b|\bkn\b`)

// DetectCurrency picks the document currency, defaulting to EUR.
func DetectCurrency(text string) string {
	if currencyEUR.MatchString(text) {
		return "EUR"
	}
	if currencyHRK.MatchString(text) {
		return "HRK"
	}
	return "EUR"
}
