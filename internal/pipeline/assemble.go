package pipeline

import (
	"strings"

	"github.com/rubilakse/docparse/constants"
	"github.com/rubilakse/docparse/internal/entity"
	"github.com/rubilakse/docparse/internal/llm"
	"github.com/rubilakse/docparse/internal/locale"
	"github.com/rubilakse/docparse/internal/parse"
)

// assembleFromFields maps model output onto the document record, running
// dates and amounts through the same locale rules as the deterministic
// path.
func assembleFromFields(doc *entity.ParsedDocument, f llm.DocumentFields, filtered string) {
	docType, ok := constants.CanonicalizeDocType(f.DocumentType)
	if !ok && f.DocumentType == "" {
		docType = parse.DetectDocType(filtered)
	}

	doc.Meta = entity.DocumentMeta{
		DocType:       docType,
		Number:        strPtr(f.DocumentNumber),
		IssueDate:     locale.ParseDatePtr(f.IssueDate),
		DueDate:       locale.ParseDatePtr(f.DueDate),
		Place:         strPtr(f.Place),
		PaymentTerms:  strPtr(f.PaymentTerms),
		DeliveryTerms: strPtr(f.DeliveryTerms),
		Currency:      normalizeCurrency(f.Currency, filtered),
	}

	doc.Seller = partyFromFields(f.Supplier)
	doc.Buyer = partyFromFields(f.Buyer)

	doc.Lines = make([]entity.LineItem, 0, len(f.Items))
	for i, it := range f.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		doc.Lines = append(doc.Lines, entity.LineItem{
			Position:        i + 1,
			Code:            strPtr(it.Code),
			Name:            name,
			Unit:            strPtr(strings.ToLower(it.Unit)),
			Quantity:        it.Quantity.Ptr(),
			UnitPrice:       it.UnitPrice.Ptr(),
			DiscountPercent: it.DiscountPercent.Ptr(),
			AmountNet:       it.Amount.Ptr(),
		})
	}

	totals := entity.Totals{
		Subtotal:      f.Totals.Subtotal.Ptr(),
		DiscountTotal: f.Totals.Discount.Ptr(),
		VATAmount:     f.Totals.VATAmount.Ptr(),
		Total:         f.Totals.Total.Ptr(),
		VATRate:       25,
	}
	if f.Totals.VATRate.Valid {
		totals.VATRate = f.Totals.VATRate.Value
	}
	doc.Summary = deriveTotals(totals)
}

// deriveTotals fills a missing grand total from subtotal plus VAT. A
// reported total is kept as-is, and the subtotal is never derived
// backwards from a total.
func deriveTotals(t entity.Totals) entity.Totals {
	if t.Total == nil && t.Subtotal != nil && t.VATAmount != nil {
		sum := *t.Subtotal + *t.VATAmount
		t.Total = &sum
	}
	return t
}

func partyFromFields(p llm.PartyFields) entity.Party {
	out := entity.Party{
		Name:    strPtr(p.Name),
		Address: strPtr(p.Address),
		IBAN:    strPtr(p.IBAN),
		Email:   strPtr(p.Email),
	}
	oib := strings.TrimSpace(p.OIB)
	if len(oib) == 11 {
		out.TaxID = &oib
	}
	return out
}

func normalizeCurrency(cur, filtered string) string {
	cur = strings.ToUpper(strings.TrimSpace(cur))
	if len(cur) == 3 {
		return cur
	}
	return parse.DetectCurrency(filtered)
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
