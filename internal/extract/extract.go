// Package extract turns ingested file bytes into raw text with layout
// fragments, dispatching per file format.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/rubilakse/docparse/constants"
	"github.com/rubilakse/docparse/internal/common"
	"github.com/rubilakse/docparse/internal/entity"
)

// LowConfidenceWarning is attached when OCR reports a mean word
// confidence under MinOCRConfidence. It never fails the extraction.
const LowConfidenceWarning = "ocr confidence below threshold, review recommended"

// MinOCRConfidence is the engine-scale threshold under which OCR output
// is flagged for review.
const MinOCRConfidence = 65.0

type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"

	DPI      int // rasterization DPI for scanned PDFs, default 300
	MaxPages int // 0 = no limit

	// MinCharsPerPage decides when a PDF text layer is too thin to
	// trust and the pages are rasterized for OCR instead.
	MinCharsPerPage int

	UpscaleFactor float64 // image pre-processing scale, default 2.5
	BinarizeLevel uint8   // grayscale cutoff, default 140

	Languages   []string // tesseract languages, default hrv+eng
	TessdataDir string
}

// Extractor routes files to the PDF, OCR, spreadsheet or plain text path.
type Extractor struct {
	cfg    Config
	engine OCREngine
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, engine OCREngine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinCharsPerPage <= 0 {
		cfg.MinCharsPerPage = 150
	}
	if cfg.UpscaleFactor <= 0 {
		cfg.UpscaleFactor = 2.5
	}
	if cfg.BinarizeLevel == 0 {
		cfg.BinarizeLevel = 140
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"hrv", "eng"}
	}
	if engine == nil {
		engine = &tesseractEngine{cfg: cfg, logger: logger}
	}
	return &Extractor{cfg: cfg, engine: engine, runner: newExecRunner(logger), logger: logger}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, f File) (entity.RawExtraction, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(f.Name))
	e.logger.Debug("extract.start", "file", f.Name, "ext", ext, "bytes", len(f.Data))

	if len(f.Data) == 0 {
		return entity.RawExtraction{}, common.NewAppError("EMPTY_FILE", f.Name, common.ErrInvalidInput)
	}

	var res entity.RawExtraction
	var err error
	switch constants.MapExtToFormat(ext) {
	case "PDF":
		res, err = e.extractPDF(ctx, f)
	case "IMAGE":
		res, err = e.extractImage(ctx, f.Data)
	case "SHEET":
		res, err = e.extractSheet(f)
	case "TXT":
		res, err = e.extractText(f)
	default:
		return entity.RawExtraction{}, common.NewAppError("UNSUPPORTED_FORMAT",
			fmt.Sprintf("extension %q", ext), common.ErrUnsupported)
	}
	if err != nil {
		return res, err
	}

	if res.RawText == "" && res.SpatialText == "" {
		return res, common.NewAppError("EMPTY_DOCUMENT", f.Name, common.ErrEmptyDocument)
	}

	e.logger.Info("extract.done",
		"file", f.Name,
		"format", res.SourceFormat,
		"pages", res.Pages,
		"chars", len(res.RawText),
		"confidence", res.Confidence,
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}
