package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/rubilakse/docparse/internal/common"
	"github.com/rubilakse/docparse/internal/entity"
	"github.com/rubilakse/docparse/internal/spatial"
)

// extractPDF reads the embedded text layer with positions. PDFs whose
// text layer averages fewer than MinCharsPerPage characters are treated
// as scans and rerouted through rasterization and OCR.
func (e *Extractor) extractPDF(ctx context.Context, f File) (entity.RawExtraction, error) {
	reader, err := pdf.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return entity.RawExtraction{}, common.NewAppError("PDF_OPEN", f.Name, err)
	}

	pages := reader.NumPage()
	var fragments []entity.Fragment
	var spatialParts []string
	var rawParts []string
	totalChars := 0

	for i := 1; i <= pages; i++ {
		if e.cfg.MaxPages > 0 && i > e.cfg.MaxPages {
			break
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageFrags := pageFragments(page)
		fragments = append(fragments, pageFrags...)

		joined, chars := joinFragmentText(pageFrags)
		totalChars += chars
		rawParts = append(rawParts, joined)
		spatialParts = append(spatialParts, spatial.Reconstruct(pageFrags))
	}

	scanned := pages > 0 && totalChars/pages < e.cfg.MinCharsPerPage
	if scanned {
		e.logger.Info("extract.pdf_sparse_text",
			"file", f.Name, "pages", pages, "chars", totalChars)
		res, err := e.pdfToOCR(ctx, f)
		if err == nil {
			return res, nil
		}
		// fall through to whatever the text layer gave us
		e.logger.Warn("extract.pdf_ocr_failed", "file", f.Name, "error", err)
	}

	res := entity.RawExtraction{
		RawText:      strings.Join(rawParts, "\n\f\n"),
		SpatialText:  strings.Join(spatialParts, "\n\f\n"),
		Fragments:    fragments,
		SourceFormat: "pdf-text",
		Pages:        pages,
		Confidence:   heuristicConfidence(strings.Join(rawParts, "\n")),
	}
	if scanned {
		res.Warnings = append(res.Warnings, "scanned pdf, rasterization unavailable")
	}
	return res, nil
}

// joinFragmentText flattens page fragments into plain text, separated
// by single spaces so adjacent runs do not glue into one word. The
// character count excludes the separators and feeds the scan heuristic.
func joinFragmentText(frags []entity.Fragment) (string, int) {
	parts := make([]string, 0, len(frags))
	chars := 0
	for _, fr := range frags {
		parts = append(parts, fr.Text)
		chars += len(fr.Text)
	}
	return strings.Join(parts, " "), chars
}

// pageFragments lifts positioned runs from one page. PDF coordinates
// grow upward, so y is flipped for top-down reading order.
func pageFragments(page pdf.Page) []entity.Fragment {
	content := page.Content()
	frags := make([]entity.Fragment, 0, len(content.Text))

	var maxY float64
	for _, t := range content.Text {
		if t.Y > maxY {
			maxY = t.Y
		}
	}

	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		frags = append(frags, entity.Fragment{
			Text: t.S,
			X:    t.X,
			Y:    maxY - t.Y,
			W:    t.W,
			H:    t.FontSize,
		})
	}
	return frags
}

// pdfToOCR rasterizes the document with pdftoppm and recognizes each
// page image, joining pages with a form-feed marker.
func (e *Extractor) pdfToOCR(ctx context.Context, f File) (entity.RawExtraction, error) {
	tmpDir, err := os.MkdirTemp("", "dp-pp-*")
	if err != nil {
		return entity.RawExtraction{}, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("extract.tmp_cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	in := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(in, f.Data, 0o600); err != nil {
		return entity.RawExtraction{}, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", in, prefix)
	if err != nil {
		return entity.RawExtraction{}, common.NewAppError("PDF_RASTER", string(errb), err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return entity.RawExtraction{}, common.NewAppError("PDF_RASTER", "no pages rendered", common.ErrEmptyDocument)
	}

	var rawParts, spatialParts []string
	var fragments []entity.Fragment
	var warns []string
	var confSum float64
	confPages := 0

	for _, img := range matches {
		data, err := os.ReadFile(img)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		pageRes, err := e.recognizeImage(ctx, data)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		rawParts = append(rawParts, pageRes.Text)
		spatialParts = append(spatialParts, spatial.Reconstruct(pageRes.Words))
		fragments = append(fragments, pageRes.Words...)
		confSum += pageRes.Confidence
		confPages++
	}

	res := entity.RawExtraction{
		RawText:      strings.Join(rawParts, "\n\f\n"),
		SpatialText:  strings.Join(spatialParts, "\n\f\n"),
		Fragments:    fragments,
		SourceFormat: "pdf-ocr",
		Pages:        len(matches),
		Warnings:     warns,
	}
	if confPages > 0 {
		mean := confSum / float64(confPages)
		res.Confidence = float32(mean / 100.0)
		if mean < MinOCRConfidence {
			res.Warnings = append(res.Warnings, LowConfidenceWarning)
		}
	}
	return res, nil
}
