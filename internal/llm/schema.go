package llm

// BuildDocumentJSONSchema is the shape the model must answer with.
// Amount fields accept numbers or strings; locale normalization runs
// after decoding either way.
func BuildDocumentJSONSchema(docTypes []string) map[string]any {
	amount := map[string]any{"type": []string{"number", "string", "null"}}
	party := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":    map[string]any{"type": "string"},
			"address": map[string]any{"type": "string"},
			"oib":     map[string]any{"type": "string"},
			"iban":    map[string]any{"type": "string"},
			"email":   map[string]any{"type": "string"},
		},
		"additionalProperties": false,
	}
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code":             map[string]any{"type": "string"},
			"name":             map[string]any{"type": "string"},
			"unit":             map[string]any{"type": "string"},
			"quantity":         amount,
			"unit_price":       amount,
			"discount_percent": amount,
			"amount":           amount,
		},
		"required":             []string{"name"},
		"additionalProperties": false,
	}

	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]any{
			"document_type":   map[string]any{"type": "string", "enum": docTypes},
			"document_number": map[string]any{"type": "string"},
			"issue_date":      map[string]any{"type": "string"},
			"due_date":        map[string]any{"type": "string"},
			"place":           map[string]any{"type": "string"},
			"currency":        map[string]any{"type": "string"},
			"payment_terms":   map[string]any{"type": "string"},
			"delivery_terms":  map[string]any{"type": "string"},
			"supplier":        party,
			"buyer":           party,
			"items":           map[string]any{"type": "array", "items": item},
			"totals": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"subtotal":   amount,
					"discount":   amount,
					"vat_rate":   amount,
					"vat_amount": amount,
					"total":      amount,
				},
				"additionalProperties": false,
			},
		},
		"additionalProperties": false,
	}
}
