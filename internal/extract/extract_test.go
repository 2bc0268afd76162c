package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rubilakse/docparse/internal/common"
	"github.com/rubilakse/docparse/internal/entity"
)

// fakeEngine returns canned OCR output without touching tesseract.
type fakeEngine struct {
	res OCRResult
	err error
}

func (f *fakeEngine) Recognize(ctx context.Context, png []byte) (OCRResult, error) {
	return f.res, f.err
}

func testImagePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractRejectsEmptyAndUnknown(t *testing.T) {
	e := NewExtractor(Config{}, &fakeEngine{}, nil)

	_, err := e.Extract(context.Background(), File{Name: "a.pdf"})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("empty file: %v", err)
	}

	_, err = e.Extract(context.Background(), File{Name: "a.xyz", Data: []byte("x")})
	if !errors.Is(err, common.ErrUnsupported) {
		t.Errorf("unknown ext: %v", err)
	}
}

func TestExtractImagePath(t *testing.T) {
	engine := &fakeEngine{res: OCRResult{
		Text: "RAČUN 1/2024",
		Words: []entity.Fragment{
			{Text: "RAČUN", X: 0, Y: 0, W: 50, H: 12},
			{Text: "1/2024", X: 60, Y: 0, W: 40, H: 12},
		},
		Confidence: 91,
	}}
	e := NewExtractor(Config{}, engine, nil)

	res, err := e.Extract(context.Background(), File{Name: "scan.png", Data: testImagePNG(t)})
	if err != nil {
		t.Fatal(err)
	}
	if res.SourceFormat != "image-ocr" {
		t.Errorf("source format = %q", res.SourceFormat)
	}
	if res.SpatialText != "RAČUN 1/2024" {
		t.Errorf("spatial text = %q", res.SpatialText)
	}
	if res.Confidence < 0.90 || res.Confidence > 0.92 {
		t.Errorf("confidence = %v", res.Confidence)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestExtractImageLowConfidenceWarns(t *testing.T) {
	engine := &fakeEngine{res: OCRResult{
		Text:       "mrlje",
		Words:      []entity.Fragment{{Text: "mrlje", X: 0, Y: 0, W: 30, H: 10}},
		Confidence: 40,
	}}
	e := NewExtractor(Config{}, engine, nil)

	res, err := e.Extract(context.Background(), File{Name: "blur.jpg", Data: testImagePNG(t)})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, w := range res.Warnings {
		if w == LowConfidenceWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("expected low confidence warning, got %v", res.Warnings)
	}
}

func TestExtractSheet(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	_ = wb.SetCellValue(sheet, "A1", "Naziv")
	_ = wb.SetCellValue(sheet, "B1", "Količina")
	_ = wb.SetCellValue(sheet, "A2", "Profil")
	_ = wb.SetCellValue(sheet, "B2", "10")
	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	e := NewExtractor(Config{}, &fakeEngine{}, nil)
	res, err := e.Extract(context.Background(), File{Name: "items.xlsx", Data: buf.Bytes()})
	if err != nil {
		t.Fatal(err)
	}
	if res.SourceFormat != "sheet" {
		t.Errorf("source format = %q", res.SourceFormat)
	}
	if !strings.Contains(res.RawText, "Naziv\tKoličina") {
		t.Errorf("raw text = %q", res.RawText)
	}
	if !strings.Contains(res.RawText, "Profil\t10") {
		t.Errorf("raw text = %q", res.RawText)
	}
}

func TestExtractCSVSemicolon(t *testing.T) {
	data := []byte("Naziv;Kolicina;Cijena\nProfil;10;12,50\n")
	e := NewExtractor(Config{}, &fakeEngine{}, nil)

	res, err := e.Extract(context.Background(), File{Name: "items.csv", Data: data})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.RawText, "Profil\t10\t12,50") {
		t.Errorf("raw text = %q", res.RawText)
	}
}

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor(Config{}, &fakeEngine{}, nil)
	res, err := e.Extract(context.Background(), File{Name: "note.txt", Data: []byte("Ponuda 5\r\nUkupno: 100,00 EUR\r\n")})
	if err != nil {
		t.Fatal(err)
	}
	if res.SourceFormat != "text" {
		t.Errorf("source format = %q", res.SourceFormat)
	}
	if res.RawText != "Ponuda 5\nUkupno: 100,00 EUR" {
		t.Errorf("raw text = %q", res.RawText)
	}
	if res.Confidence <= 0.2 {
		t.Errorf("confidence = %v", res.Confidence)
	}
}

func TestPreprocessImage(t *testing.T) {
	out, err := preprocessImage(testImagePNG(t), 2.5, 140)
	if err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 100 {
		t.Errorf("upscaled width = %d, want 100", img.Bounds().Dx())
	}
	// 200 gray is above the 140 cutoff, everything must be white
	r, g, b, _ := img.At(5, 5).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Errorf("pixel = %v %v %v, want white", r, g, b)
	}
}

func TestJoinFragmentText(t *testing.T) {
	frags := []entity.Fragment{
		{Text: "RAČUN"},
		{Text: "55/1/1"},
		{Text: "UKUPNO:"},
		{Text: "1.250,00"},
	}

	joined, chars := joinFragmentText(frags)
	if joined != "RAČUN 55/1/1 UKUPNO: 1.250,00" {
		t.Errorf("joined = %q", joined)
	}
	want := 0
	for _, fr := range frags {
		want += len(fr.Text)
	}
	if chars != want {
		t.Errorf("chars = %d, want %d", chars, want)
	}

	if joined, chars := joinFragmentText(nil); joined != "" || chars != 0 {
		t.Errorf("empty input gave %q / %d", joined, chars)
	}
}

func TestHeuristicConfidence(t *testing.T) {
	rich := "Račun 15.03.2024 Ukupno: 1.250,00 EUR " + strings.Repeat("x", 120)
	poor := "hi"
	if heuristicConfidence(rich) <= heuristicConfidence(poor) {
		t.Errorf("document-like text must score higher")
	}
	if c := heuristicConfidence(poor); c != 0.2 {
		t.Errorf("base confidence = %v, want 0.2", c)
	}
}
