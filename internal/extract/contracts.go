package extract

import (
	"context"

	"github.com/rubilakse/docparse/internal/entity"
)

// File is one ingested input, already loaded into memory.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// TextExtractor is stage 1: file bytes -> positioned raw text.
type TextExtractor interface {
	Extract(ctx context.Context, f File) (entity.RawExtraction, error)
}

// OCRResult is what an OCR engine reports for one image.
type OCRResult struct {
	Text       string
	Words      []entity.Fragment
	Confidence float64 // 0..100, engine scale
}

// OCREngine recognizes text in an already pre-processed image.
type OCREngine interface {
	Recognize(ctx context.Context, png []byte) (OCRResult, error)
}
