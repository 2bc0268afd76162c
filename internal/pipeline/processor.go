// Package pipeline coordinates text acquisition, noise filtering, field
// extraction and assembly into parsed document records.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rubilakse/docparse/constants"
	"github.com/rubilakse/docparse/internal/common"
	"github.com/rubilakse/docparse/internal/entity"
	"github.com/rubilakse/docparse/internal/extract"
	"github.com/rubilakse/docparse/internal/llm"
	"github.com/rubilakse/docparse/internal/parse"
)

// ShortInputConfidence replaces the regex baseline when the filtered
// text is under llm.MinInputChars; such documents carry almost nothing
// to anchor patterns on.
const ShortInputConfidence = 0.30

// Fallback warnings surfaced on the parsed document.
const (
	WarnAiUnavailable = "analysis service unreachable, used pattern extraction"
	WarnAiMalformed   = "analysis response unusable, used pattern extraction"
	WarnShortInput    = "input too short for analysis, used pattern extraction"
)

type Config struct {
	// AnalysisEnabled turns the whole field extraction stage on or off.
	// When off, documents carry raw text only.
	AnalysisEnabled bool
}

// Processor runs one document through the full pipeline.
type Processor struct {
	extractor extract.TextExtractor
	parser    *parse.Parser
	fields    llm.FieldExtractor
	pinger    llm.Pinger
	cfg       Config
	logger    *slog.Logger
}

// NewProcessor wires the stages. fields and pinger may be nil, in which
// case every document takes the deterministic path.
func NewProcessor(extractor extract.TextExtractor, parser *parse.Parser, fields llm.FieldExtractor, pinger llm.Pinger, cfg Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		extractor: extractor,
		parser:    parser,
		fields:    fields,
		pinger:    pinger,
		cfg:       cfg,
		logger:    logger,
	}
}

// ProcessFile runs acquisition, filtering, extraction and assembly for
// one file. Extraction failures return an error; analysis failures only
// degrade the method and confidence.
func (p *Processor) ProcessFile(ctx context.Context, f extract.File) (entity.ParsedDocument, error) {
	start := time.Now()
	p.logger.Info("pipeline.acquiring", "file", f.Name)

	raw, err := p.extractor.Extract(ctx, f)
	if err != nil {
		return entity.ParsedDocument{}, err
	}

	text := raw.SpatialText
	if text == "" {
		text = raw.RawText
	}
	filtered := parse.StripNoise(text)

	doc := entity.ParsedDocument{
		ID: uuid.New(),
		Source: entity.SourceMeta{
			Filename: f.Name,
			MIMEType: f.MIMEType,
			Size:     int64(len(f.Data)),
		},
		RawText:     filtered,
		Warnings:    append([]string(nil), raw.Warnings...),
		ProcessedAt: time.Now().UTC(),
	}

	if !p.cfg.AnalysisEnabled {
		doc.Method = constants.MethodDisabled
		doc.Confidence = raw.Confidence
		doc.Meta.DocType = constants.DocTypeOther
		doc.Meta.Currency = "EUR"
		p.logger.Info("pipeline.assembled", "file", f.Name, "method", doc.Method,
			"duration_ms", time.Since(start).Milliseconds())
		return doc, nil
	}

	if p.tryAnalysis(ctx, f.Name, filtered, &doc) {
		p.logger.Info("pipeline.assembled", "file", f.Name, "method", doc.Method,
			"confidence", doc.Confidence, "duration_ms", time.Since(start).Milliseconds())
		return doc, nil
	}

	p.logger.Info("pipeline.extracting_regex", "file", f.Name)
	res := p.parser.Parse(filtered)
	doc.Meta = res.Meta
	doc.Seller = res.Seller
	doc.Buyer = res.Buyer
	doc.Lines = res.Lines
	doc.Summary = deriveTotals(res.Totals)
	doc.Warnings = append(doc.Warnings, res.Warnings...)
	doc.Method = constants.MethodRegex
	doc.Confidence = constants.MethodConfidence(constants.MethodRegex)
	if len(filtered) < llm.MinInputChars {
		doc.Confidence = ShortInputConfidence
		if p.fields != nil {
			doc.Warnings = append(doc.Warnings, WarnShortInput)
			p.logger.Info("pipeline.input_too_short", "file", f.Name, "chars", len(filtered))
		}
	}

	p.logger.Info("pipeline.assembled", "file", f.Name, "method", doc.Method,
		"confidence", doc.Confidence, "duration_ms", time.Since(start).Milliseconds())
	return doc, nil
}

// tryAnalysis attempts the model path and assembles the document from
// its fields. false means the deterministic path must run instead.
func (p *Processor) tryAnalysis(ctx context.Context, name, filtered string, doc *entity.ParsedDocument) bool {
	if p.fields == nil || len(filtered) < llm.MinInputChars {
		return false
	}
	if p.pinger != nil {
		if err := p.pinger.Ping(ctx); err != nil {
			p.logger.Warn("pipeline.ai_unreachable", "file", name, "error", err)
			doc.Warnings = append(doc.Warnings, WarnAiUnavailable)
			return false
		}
	}

	p.logger.Info("pipeline.extracting_llm", "file", name)
	fields, outcome, err := p.fields.ExtractFields(ctx, llm.ExtractRequest{
		Text:         filtered,
		FilenameHint: name,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMalformedAi):
			doc.Warnings = append(doc.Warnings, WarnAiMalformed)
		default:
			doc.Warnings = append(doc.Warnings, WarnAiUnavailable)
		}
		p.logger.Warn("pipeline.ai_failed", "file", name, "error", err)
		return false
	}

	assembleFromFields(doc, fields, filtered)
	if outcome == llm.OutcomeRepaired {
		doc.Method = constants.MethodLLMRepaired
	} else {
		doc.Method = constants.MethodLLM
	}
	doc.Confidence = constants.MethodConfidence(doc.Method)
	return true
}
