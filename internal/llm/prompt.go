package llm

import "strings"

func buildSystemPrompt(docTypes []string) string {
	parts := []string{
		"You are a parser for Croatian business documents (računi, ponude, predračuni).",
		"Return ONLY JSON that matches the JSON Schema provided.",
		"Use ISO-8601 dates (YYYY-MM-DD); Croatian dates are day-first (15.03.2024 is March 15).",
		"Numbers may use Croatian notation: dot for thousands, comma for decimals (1.234,56).",
		"document_type must be one of: " + strings.Join(docTypes, ", ") + ".",
		"OIB is an 11-digit tax number. The supplier issues the document, the buyer receives it.",
		"Copy line items exactly as printed, do not invent rows.",
		"Never output null for a missing field; omit it.",
	}
	return strings.Join(parts, " ")
}

func buildUserPrompt(text, filename string, maxChars int) string {
	var b strings.Builder
	b.WriteString("Filename: ")
	b.WriteString(filename)
	b.WriteString("\n\nDocument text:\n")
	if maxChars > 0 && len(text) > maxChars {
		b.WriteString(text[:maxChars])
	} else {
		b.WriteString(text)
	}
	return b.String()
}
