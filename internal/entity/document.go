package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/rubilakse/docparse/constants"
)

// Fragment is a positioned piece of text lifted from a PDF content stream
// or an OCR word box. Coordinates are top-left origin, y growing downward.
type Fragment struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

// RawExtraction is the output of the text acquisition stage, before any
// noise filtering or structured parsing.
type RawExtraction struct {
	RawText      string     `json:"raw_text"`
	SpatialText  string     `json:"spatial_text"`
	Fragments    []Fragment `json:"fragments,omitempty"`
	SourceFormat string     `json:"source_format"`
	Pages        int        `json:"pages"`
	Confidence   float32    `json:"confidence"`
	Warnings     []string   `json:"warnings,omitempty"`
}

// DocumentMeta holds header-level fields of a business document.
type DocumentMeta struct {
	DocType       constants.DocType `json:"doc_type"`
	Number        *string           `json:"number,omitempty"`
	IssueDate     *string           `json:"issue_date,omitempty"` // ISO yyyy-mm-dd
	DueDate       *string           `json:"due_date,omitempty"`   // ISO yyyy-mm-dd
	Place         *string           `json:"place,omitempty"`
	PaymentTerms  *string           `json:"payment_terms,omitempty"`
	DeliveryTerms *string           `json:"delivery_terms,omitempty"`
	Currency      string            `json:"currency"`
}

// Party is one side of a transaction, seller or buyer.
type Party struct {
	Name     *string `json:"name,omitempty"`
	Address  *string `json:"address,omitempty"`
	TaxID    *string `json:"tax_id,omitempty"` // 11-digit OIB
	IBAN     *string `json:"iban,omitempty"`
	Email    *string `json:"email,omitempty"`
	RawBlock string  `json:"raw_block,omitempty"`
}

// Empty reports whether no field of the party was identified.
func (p Party) Empty() bool {
	return p.Name == nil && p.TaxID == nil && p.IBAN == nil && p.Email == nil && p.RawBlock == ""
}

// LineItem is a single goods or services row of a document table.
type LineItem struct {
	Position        int      `json:"position"`
	Code            *string  `json:"code,omitempty"`
	Name            string   `json:"name"`
	Unit            *string  `json:"unit,omitempty"`
	Quantity        *float64 `json:"quantity,omitempty"`
	UnitPrice       *float64 `json:"unit_price,omitempty"`
	DiscountPercent *float64 `json:"discount_percent,omitempty"`
	VATPercent      *float64 `json:"vat_percent,omitempty"`
	AmountNet       *float64 `json:"amount_net,omitempty"`
	AmountGross     *float64 `json:"amount_gross,omitempty"`
}

// Totals aggregates the money summary of a document.
type Totals struct {
	Subtotal      *float64 `json:"subtotal,omitempty"`
	DiscountTotal *float64 `json:"discount_total,omitempty"`
	VATRate       float64  `json:"vat_rate"`
	VATAmount     *float64 `json:"vat_amount,omitempty"`
	Total         *float64 `json:"total,omitempty"`
}

// SourceMeta identifies the input file a document was parsed from.
type SourceMeta struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// ParsedDocument is the final structured record for one input file.
type ParsedDocument struct {
	ID          uuid.UUID                  `json:"id"`
	Source      SourceMeta                 `json:"source"`
	Meta        DocumentMeta               `json:"meta"`
	Seller      Party                      `json:"seller"`
	Buyer       Party                      `json:"buyer"`
	Lines       []LineItem                 `json:"lines"`
	Summary     Totals                     `json:"summary"`
	RawText     string                     `json:"raw_text"`
	Method      constants.ExtractionMethod `json:"method"`
	Confidence  float32                    `json:"confidence"`
	Warnings    []string                   `json:"warnings,omitempty"`
	ProcessedAt time.Time                  `json:"processed_at"`
}
