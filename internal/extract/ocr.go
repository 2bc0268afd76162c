package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/rubilakse/docparse/internal/common"
	"github.com/rubilakse/docparse/internal/entity"
	"github.com/rubilakse/docparse/internal/spatial"
)

// extractImage pre-processes a photo or scan and recognizes it.
func (e *Extractor) extractImage(ctx context.Context, data []byte) (entity.RawExtraction, error) {
	res, err := e.recognizeImage(ctx, data)
	if err != nil {
		return entity.RawExtraction{}, err
	}

	out := entity.RawExtraction{
		RawText:      res.Text,
		SpatialText:  spatial.Reconstruct(res.Words),
		Fragments:    res.Words,
		SourceFormat: "image-ocr",
		Pages:        1,
		Confidence:   float32(res.Confidence / 100.0),
	}
	if res.Confidence > 0 && res.Confidence < MinOCRConfidence {
		out.Warnings = append(out.Warnings, LowConfidenceWarning)
	}
	return out, nil
}

// recognizeImage applies the imaging pipeline and feeds the result to
// the OCR engine.
func (e *Extractor) recognizeImage(ctx context.Context, data []byte) (OCRResult, error) {
	pre, err := preprocessImage(data, e.cfg.UpscaleFactor, e.cfg.BinarizeLevel)
	if err != nil {
		return OCRResult{}, common.NewAppError("IMAGE_DECODE", "pre-processing failed", err)
	}
	return e.engine.Recognize(ctx, pre)
}

// tesseractEngine is the default OCREngine backed by gosseract. A client
// is constructed per call; gosseract clients are not goroutine safe.
type tesseractEngine struct {
	cfg    Config
	logger *slog.Logger
}

func (t *tesseractEngine) Recognize(ctx context.Context, png []byte) (OCRResult, error) {
	if err := ctx.Err(); err != nil {
		return OCRResult{}, err
	}

	client := gosseract.NewClient()
	defer func() {
		if err := client.Close(); err != nil {
			t.logger.Warn("ocr.client_close_failed", "error", err)
		}
	}()

	if err := client.SetLanguage(t.cfg.Languages...); err != nil {
		return OCRResult{}, fmt.Errorf("tesseract language: %w", err)
	}
	if t.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(t.cfg.TessdataDir); err != nil {
			return OCRResult{}, fmt.Errorf("tessdata dir: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return OCRResult{}, fmt.Errorf("tesseract psm: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return OCRResult{}, fmt.Errorf("tesseract image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return OCRResult{}, fmt.Errorf("tesseract recognize: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// text without geometry still flows through, layout is lost
		t.logger.Warn("ocr.word_boxes_failed", "error", err)
	}

	res := OCRResult{Text: strings.TrimSpace(text)}
	var confSum float64
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		res.Words = append(res.Words, entity.Fragment{
			Text: word,
			X:    float64(b.Box.Min.X),
			Y:    float64(b.Box.Min.Y),
			W:    float64(b.Box.Dx()),
			H:    float64(b.Box.Dy()),
		})
		confSum += b.Confidence
	}
	if len(res.Words) > 0 {
		res.Confidence = confSum / float64(len(res.Words))
	}
	return res, nil
}
