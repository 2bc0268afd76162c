package constants

import "strings"

// DocType is the canonical classification of an ingested document.
type DocType string

const (
	DocTypeInvoice  DocType = "invoice"
	DocTypeQuote    DocType = "quote"
	DocTypeProforma DocType = "proforma"
	DocTypeEstimate DocType = "estimate"
	DocTypeOther    DocType = "other"
)

var allDocTypes = []DocType{
	DocTypeInvoice,
	DocTypeQuote,
	DocTypeProforma,
	DocTypeEstimate,
	DocTypeOther,
}

// DocTypesAsStrings returns every canonical document type as a string slice.
func DocTypesAsStrings() []string {
	result := make([]string, len(allDocTypes))
	for i, dt := range allDocTypes {
		result[i] = string(dt)
	}
	return result
}

// CanonicalizeDocType maps free-form type labels, including English synonyms
// a model may answer with, onto a canonical DocType.
func CanonicalizeDocType(input string) (DocType, bool) {
	if input == "" {
		return DocTypeOther, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]DocType{
		"račun":         DocTypeInvoice,
		"racun":         DocTypeInvoice,
		"faktura":       DocTypeInvoice,
		"ponuda":        DocTypeQuote,
		"offer":         DocTypeQuote,
		"quotation":     DocTypeQuote,
		"predračun":     DocTypeProforma,
		"predracun":     DocTypeProforma,
		"proforma":      DocTypeProforma,
		"estimation":    DocTypeEstimate,
		"procjena":      DocTypeEstimate,
		"troškovnik":    DocTypeEstimate,
		"troskovnik":    DocTypeEstimate,
		"delivery note": DocTypeOther,
		"otpremnica":    DocTypeOther,
	}

	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}

	return DocTypeOther, false
}
