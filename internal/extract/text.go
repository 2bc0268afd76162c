package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/rubilakse/docparse/internal/entity"
)

// extractText passes plain text through with newline normalization.
func (e *Extractor) extractText(f File) (entity.RawExtraction, error) {
	text := string(f.Data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)

	return entity.RawExtraction{
		RawText:      text,
		SpatialText:  text,
		SourceFormat: "text",
		Pages:        1,
		Confidence:   heuristicConfidence(text),
	}, nil
}
