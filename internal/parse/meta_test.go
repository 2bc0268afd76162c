package parse

import (
	"testing"

	"github.com/rubilakse/docparse/constants"
)

func TestExtractMeta(t *testing.T) {
	text := `RAČUN br. 55/1/1
Datum dokumenta: 15.03.2024
Dospijeće: 30.03.2024
Mjesto izdavanja: Zagreb
Način plaćanja: transakcijski račun
Ukupno: 1.250,00 EUR`

	meta := ExtractMeta(text)

	if meta.DocType != constants.DocTypeInvoice {
		t.Errorf("doc type = %q", meta.DocType)
	}
	if meta.Number == nil || *meta.Number != "55/1/1" {
		t.Errorf("number = %v", meta.Number)
	}
	if meta.IssueDate == nil || *meta.IssueDate != "2024-03-15" {
		t.Errorf("issue date = %v", meta.IssueDate)
	}
	if meta.DueDate == nil || *meta.DueDate != "2024-03-30" {
		t.Errorf("due date = %v", meta.DueDate)
	}
	if meta.Place == nil || *meta.Place != "Zagreb" {
		t.Errorf("place = %v", meta.Place)
	}
	if meta.PaymentTerms == nil || *meta.PaymentTerms != "transakcijski račun" {
		t.Errorf("payment terms = %v", meta.PaymentTerms)
	}
	if meta.Currency != "EUR" {
		t.Errorf("currency = %q", meta.Currency)
	}
}

func TestExtractMetaSpecificDateWins(t *testing.T) {
	text := "Datum: 01.01.2020\nDatum dokumenta: 15.03.2024"
	meta := ExtractMeta(text)
	if meta.IssueDate == nil || *meta.IssueDate != "2024-03-15" {
		t.Errorf("issue date = %v, specific label must win", meta.IssueDate)
	}
}

func TestExtractMetaEmpty(t *testing.T) {
	meta := ExtractMeta("")
	if meta.Number != nil || meta.IssueDate != nil {
		t.Errorf("expected empty meta, got %+v", meta)
	}
	if meta.DocType != constants.DocTypeOther {
		t.Errorf("doc type = %q", meta.DocType)
	}
	if meta.Currency != "EUR" {
		t.Errorf("currency = %q", meta.Currency)
	}
}
