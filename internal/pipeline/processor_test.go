package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rubilakse/docparse/constants"
	"github.com/rubilakse/docparse/internal/common"
	"github.com/rubilakse/docparse/internal/entity"
	"github.com/rubilakse/docparse/internal/extract"
	"github.com/rubilakse/docparse/internal/llm"
	"github.com/rubilakse/docparse/internal/parse"
)

const invoiceText = `RAČUN br. 55/1/1
Datum dokumenta: 15.03.2024

PROZOR GRADNJA d.o.o.
OIB: 12345678901

ALUMINIUM GLASS STEEL d.o.o.
OIB: 98765432109

Šifra	Naziv	JMJ	Količina	Cijena	Iznos
AL-250	Aluminijski profil	kom	10	100,00	1.000,00

OSNOVICA: 1.000,00
PDV 25%: 250,00
UKUPNO: 1.250,00 EUR`

// fakeExtractor serves canned text per filename and fails on demand.
type fakeExtractor struct {
	texts map[string]string
	fail  map[string]error
}

func (f *fakeExtractor) Extract(ctx context.Context, file extract.File) (entity.RawExtraction, error) {
	if err, ok := f.fail[file.Name]; ok {
		return entity.RawExtraction{}, err
	}
	text := f.texts[file.Name]
	return entity.RawExtraction{
		RawText:      text,
		SpatialText:  text,
		SourceFormat: "text",
		Pages:        1,
		Confidence:   0.8,
	}, nil
}

type fakeFields struct {
	fields  llm.DocumentFields
	outcome llm.Outcome
	err     error
	calls   int
}

func (f *fakeFields) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.DocumentFields, llm.Outcome, error) {
	f.calls++
	return f.fields, f.outcome, f.err
}

func newTestProcessor(t *testing.T, ex extract.TextExtractor, fields llm.FieldExtractor) *Processor {
	t.Helper()
	parser, err := parse.NewParser(parse.Config{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewProcessor(ex, parser, fields, nil, Config{AnalysisEnabled: true}, nil)
}

func TestProcessFileRegexPath(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"racun.txt": invoiceText}}
	p := newTestProcessor(t, ex, nil)

	doc, err := p.ProcessFile(context.Background(), extract.File{Name: "racun.txt", Data: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}

	if doc.Method != constants.MethodRegex {
		t.Errorf("method = %q", doc.Method)
	}
	if doc.Confidence != 0.60 {
		t.Errorf("confidence = %v", doc.Confidence)
	}
	if doc.Meta.DocType != constants.DocTypeInvoice {
		t.Errorf("doc type = %q", doc.Meta.DocType)
	}
	if doc.Seller.TaxID == nil || *doc.Seller.TaxID != "12345678901" {
		t.Errorf("seller = %+v", doc.Seller)
	}
	if doc.Buyer.TaxID == nil || *doc.Buyer.TaxID != "98765432109" {
		t.Errorf("buyer = %+v", doc.Buyer)
	}
	if len(doc.Lines) != 1 {
		t.Fatalf("lines = %d", len(doc.Lines))
	}
	if doc.Summary.Total == nil || *doc.Summary.Total != 1250 {
		t.Errorf("total = %v", doc.Summary.Total)
	}
}

func TestProcessFileShortInputConfidence(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"s.txt": "Ukupno: 5,00"}}
	fields := &fakeFields{}
	p := newTestProcessor(t, ex, fields)

	doc, err := p.ProcessFile(context.Background(), extract.File{Name: "s.txt", Data: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	if fields.calls != 0 {
		t.Errorf("model called for short input")
	}
	if doc.Method != constants.MethodRegex {
		t.Errorf("method = %q", doc.Method)
	}
	if doc.Confidence != ShortInputConfidence {
		t.Errorf("confidence = %v, want %v", doc.Confidence, ShortInputConfidence)
	}
	if !hasWarning(doc.Warnings, WarnShortInput) {
		t.Errorf("warnings = %v, want %q", doc.Warnings, WarnShortInput)
	}
}

func TestProcessFileLLMPath(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"racun.txt": invoiceText}}
	fields := &fakeFields{
		fields: llm.DocumentFields{
			DocumentType:   "invoice",
			DocumentNumber: "55/1/1",
			IssueDate:      "15.03.2024",
			Currency:       "EUR",
			Items:          []llm.ItemFields{{Name: "Aluminijski profil", Quantity: llm.Number{Value: 10, Valid: true}}},
			Totals: llm.TotalsFields{
				Subtotal:  llm.Number{Value: 1000, Valid: true},
				VATAmount: llm.Number{Value: 250, Valid: true},
				Total:     llm.Number{Value: 9999, Valid: true},
			},
		},
	}
	p := newTestProcessor(t, ex, fields)

	doc, err := p.ProcessFile(context.Background(), extract.File{Name: "racun.txt", Data: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Method != constants.MethodLLM {
		t.Errorf("method = %q", doc.Method)
	}
	if doc.Confidence != 0.95 {
		t.Errorf("confidence = %v", doc.Confidence)
	}
	if doc.Meta.IssueDate == nil || *doc.Meta.IssueDate != "2024-03-15" {
		t.Errorf("issue date = %v", doc.Meta.IssueDate)
	}
	// the reported total is kept, subtotal plus VAT is not recomputed over it
	if doc.Summary.Total == nil || *doc.Summary.Total != 9999 {
		t.Errorf("total = %v", doc.Summary.Total)
	}
}

func TestProcessFileLLMTotalDerivedWhenMissing(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"racun.txt": invoiceText}}
	fields := &fakeFields{
		fields: llm.DocumentFields{
			DocumentType: "invoice",
			Totals: llm.TotalsFields{
				Subtotal:  llm.Number{Value: 1000, Valid: true},
				VATAmount: llm.Number{Value: 250, Valid: true},
			},
		},
	}
	p := newTestProcessor(t, ex, fields)

	doc, err := p.ProcessFile(context.Background(), extract.File{Name: "racun.txt", Data: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Summary.Total == nil || *doc.Summary.Total != 1250 {
		t.Errorf("total = %v, want derived 1250", doc.Summary.Total)
	}
}

func TestProcessFileRepairedConfidence(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"racun.txt": invoiceText}}
	fields := &fakeFields{
		fields:  llm.DocumentFields{DocumentType: "invoice"},
		outcome: llm.OutcomeRepaired,
	}
	p := newTestProcessor(t, ex, fields)

	doc, err := p.ProcessFile(context.Background(), extract.File{Name: "racun.txt", Data: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Method != constants.MethodLLMRepaired {
		t.Errorf("method = %q", doc.Method)
	}
	if doc.Confidence != 0.85 {
		t.Errorf("confidence = %v", doc.Confidence)
	}
}

func TestProcessFileMalformedFallsBackToRegex(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"racun.txt": invoiceText}}
	fields := &fakeFields{err: common.NewAppError("AI_MALFORMED", "junk", common.ErrMalformedAi)}
	p := newTestProcessor(t, ex, fields)

	doc, err := p.ProcessFile(context.Background(), extract.File{Name: "racun.txt", Data: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	if fields.calls != 1 {
		t.Errorf("model calls = %d", fields.calls)
	}
	if doc.Method != constants.MethodRegex {
		t.Errorf("method = %q", doc.Method)
	}
	if !hasWarning(doc.Warnings, WarnAiMalformed) {
		t.Errorf("warnings = %v", doc.Warnings)
	}
	// the deterministic result is still complete
	if doc.Summary.Total == nil || *doc.Summary.Total != 1250 {
		t.Errorf("total = %v", doc.Summary.Total)
	}
}

func TestProcessFileAnalysisDisabled(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"racun.txt": invoiceText}}
	parser, _ := parse.NewParser(parse.Config{}, nil)
	fields := &fakeFields{}
	p := NewProcessor(ex, parser, fields, nil, Config{AnalysisEnabled: false}, nil)

	doc, err := p.ProcessFile(context.Background(), extract.File{Name: "racun.txt", Data: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Method != constants.MethodDisabled {
		t.Errorf("method = %q", doc.Method)
	}
	if fields.calls != 0 {
		t.Errorf("model called while disabled")
	}
	if doc.RawText == "" {
		t.Errorf("raw text missing")
	}
	if len(doc.Lines) != 0 {
		t.Errorf("lines = %d, want none", len(doc.Lines))
	}
}

func TestProcessFileNoiseFiltered(t *testing.T) {
	text := "Ponuda 77\nEstimation on Page 1\nORGADATA LogiKal v11\nUkupno: 300,00 EUR i jos teksta za duljinu"
	ex := &fakeExtractor{texts: map[string]string{"p.txt": text}}
	p := newTestProcessor(t, ex, nil)

	doc, err := p.ProcessFile(context.Background(), extract.File{Name: "p.txt", Data: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(doc.RawText, "ORGADATA") || strings.Contains(doc.RawText, "Estimation on Page") {
		t.Errorf("noise survived: %q", doc.RawText)
	}
}

func TestProcessBatchIsolation(t *testing.T) {
	ex := &fakeExtractor{
		texts: map[string]string{
			"a.txt": invoiceText,
			"c.txt": invoiceText,
		},
		fail: map[string]error{
			"b.pdf": common.NewAppError("PDF_OPEN", "b.pdf", errors.New("broken xref")),
		},
	}
	p := newTestProcessor(t, ex, nil)

	files := []extract.File{
		{Name: "a.txt", Data: []byte("x")},
		{Name: "b.pdf", Data: []byte("x")},
		{Name: "c.txt", Data: []byte("x")},
	}
	results := p.ProcessBatch(context.Background(), files, BatchOptions{Workers: 2})

	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for i, want := range []string{StatusProcessed, StatusError, StatusProcessed} {
		if results[i].Status != want {
			t.Errorf("results[%d].Status = %q, want %q", i, results[i].Status, want)
		}
		if results[i].Index != i {
			t.Errorf("results[%d].Index = %d", i, results[i].Index)
		}
	}
	if results[1].Err == nil || results[1].Document != nil {
		t.Errorf("error slot = %+v", results[1])
	}
	if results[0].Document == nil || results[0].Document.Method != constants.MethodRegex {
		t.Errorf("processed slot = %+v", results[0])
	}
}

func hasWarning(warnings []string, want string) bool {
	for _, w := range warnings {
		if w == want {
			return true
		}
	}
	return false
}
