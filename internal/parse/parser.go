package parse

import (
	"log/slog"
	"regexp"

	"github.com/rubilakse/docparse/internal/entity"
)

// Config tunes the deterministic extractor.
type Config struct {
	// BuyerPattern names the house side of a transaction when only one
	// party block is found; matched against the party's raw block.
	BuyerPattern string
	// LongNameLimit caps line item names before truncation.
	LongNameLimit int
	// MaxLineRows caps how many item rows a document may yield.
	MaxLineRows int
	// MaxSuspectRows is the fallback row count at or under which an
	// all-overlong result is rejected as mis-split prose.
	MaxSuspectRows int
}

// Parser runs the deterministic extraction pipeline over filtered text.
type Parser struct {
	cfg     Config
	buyerRe *regexp.Regexp
	log     *slog.Logger
}

// NewParser fills config defaults and compiles the buyer pattern.
func NewParser(cfg Config, logger *slog.Logger) (*Parser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LongNameLimit <= 0 {
		cfg.LongNameLimit = 180
	}
	if cfg.MaxLineRows <= 0 {
		cfg.MaxLineRows = 50
	}
	if cfg.MaxSuspectRows <= 0 {
		cfg.MaxSuspectRows = 2
	}
	if cfg.BuyerPattern == "" {
		cfg.BuyerPattern = `(?i)ALUMINIUM\s+GLASS\s+STEEL`
	}

	buyerRe, err := regexp.Compile(cfg.BuyerPattern)
	if err != nil {
		return nil, err
	}

	return &Parser{cfg: cfg, buyerRe: buyerRe, log: logger}, nil
}

// Result carries every structured field the deterministic path produces.
type Result struct {
	Meta     entity.DocumentMeta
	Seller   entity.Party
	Buyer    entity.Party
	Lines    []entity.LineItem
	Totals   entity.Totals
	Warnings []string
}

// Parse runs classification, party, line item and totals extraction over
// already noise-filtered text.
func (p *Parser) Parse(text string) Result {
	var res Result

	res.Meta = ExtractMeta(text)

	var partyWarns []string
	res.Seller, res.Buyer, partyWarns = ExtractParties(text, p.buyerRe)
	res.Warnings = append(res.Warnings, partyWarns...)

	var lineWarns []string
	res.Lines, lineWarns = ExtractLineItems(text, p.cfg)
	res.Warnings = append(res.Warnings, lineWarns...)

	res.Totals = ExtractTotals(text)

	p.log.Debug("parse.done",
		"doc_type", res.Meta.DocType,
		"lines", len(res.Lines),
		"warnings", len(res.Warnings))
	return res
}
