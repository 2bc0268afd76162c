// Package llm extracts structured document fields through an
// OpenAI-compatible chat completions endpoint, validating every
// response against a JSON schema before it is trusted.
package llm

import "context"

// MinInputChars is the shortest filtered text worth sending to the
// model. Anything shorter goes straight to the deterministic path.
const MinInputChars = 50

// Outcome records how the model response was obtained.
type Outcome int

const (
	// OutcomeClean means the response parsed and validated as-is.
	OutcomeClean Outcome = iota
	// OutcomeRepaired means the JSON had to be cut out of a larger or
	// broken response body before it validated.
	OutcomeRepaired
)

// ExtractRequest carries one document's text into field extraction.
type ExtractRequest struct {
	Text         string
	FilenameHint string
}

// FieldExtractor is stage 2: filtered text -> structured fields.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (DocumentFields, Outcome, error)
}

// Pinger reports whether the analysis endpoint is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PartyFields is one transaction party as the model reports it.
type PartyFields struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	OIB     string `json:"oib,omitempty"`
	IBAN    string `json:"iban,omitempty"`
	Email   string `json:"email,omitempty"`
}

// ItemFields is one goods row as the model reports it.
type ItemFields struct {
	Code            string `json:"code,omitempty"`
	Name            string `json:"name"`
	Unit            string `json:"unit,omitempty"`
	Quantity        Number `json:"quantity,omitempty"`
	UnitPrice       Number `json:"unit_price,omitempty"`
	DiscountPercent Number `json:"discount_percent,omitempty"`
	Amount          Number `json:"amount,omitempty"`
}

// TotalsFields is the money summary as the model reports it.
type TotalsFields struct {
	Subtotal  Number `json:"subtotal,omitempty"`
	Discount  Number `json:"discount,omitempty"`
	VATRate   Number `json:"vat_rate,omitempty"`
	VATAmount Number `json:"vat_amount,omitempty"`
	Total     Number `json:"total,omitempty"`
}

// DocumentFields is the full model answer for one document.
type DocumentFields struct {
	DocumentType   string       `json:"document_type,omitempty"`
	DocumentNumber string       `json:"document_number,omitempty"`
	IssueDate      string       `json:"issue_date,omitempty"`
	DueDate        string       `json:"due_date,omitempty"`
	Place          string       `json:"place,omitempty"`
	Currency       string       `json:"currency,omitempty"`
	PaymentTerms   string       `json:"payment_terms,omitempty"`
	DeliveryTerms  string       `json:"delivery_terms,omitempty"`
	Supplier       PartyFields  `json:"supplier,omitempty"`
	Buyer          PartyFields  `json:"buyer,omitempty"`
	Items          []ItemFields `json:"items,omitempty"`
	Totals         TotalsFields `json:"totals,omitempty"`
}
