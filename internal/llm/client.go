package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rubilakse/docparse/constants"
	"github.com/rubilakse/docparse/internal/common"
)

// Config for the analysis client. The endpoint is any OpenAI-compatible
// server; the default points at a local model host.
type Config struct {
	APIKey      string // if empty, falls back to env LLM_API_KEY
	BaseURL     string // default http://localhost:1234/v1
	Model       string
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
	MaxChars    int           // user prompt text cap
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("LLM_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:1234/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "local-model"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.01
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 25000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

// Ping checks the models listing endpoint. A failure means the whole
// analysis path should be skipped, not that processing fails.
func (c *Client) Ping(ctx context.Context) error {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return common.NewAppError("AI_UNREACHABLE", url, common.ErrAiUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode/100 != 2 {
		return common.NewAppError("AI_UNREACHABLE", fmt.Sprintf("status %d", resp.StatusCode), common.ErrAiUnavailable)
	}
	return nil
}

// ExtractFields sends the document text with a schema-constrained prompt
// and decodes the answer. A response that fails strict validation gets
// one repair attempt: the first balanced JSON object is cut out and
// re-validated. Outcome reports which of the two paths succeeded.
func (c *Client) ExtractFields(ctx context.Context, req ExtractRequest) (DocumentFields, Outcome, error) {
	rid := uuid.New().String()
	start := time.Now()

	docTypes := constants.DocTypesAsStrings()
	schema := BuildDocumentJSONSchema(docTypes)

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
		"file", req.FilenameHint,
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": buildSystemPrompt(docTypes)},
			{"role": "user", "content": buildUserPrompt(req.Text, req.FilenameHint, c.cfg.MaxChars) +
				"\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{}
	if c.cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.cfg.APIKey
	}
	raw, _, httpErr := SendJSON(ctx, c.http, endpoint, body, headers, c.log)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return DocumentFields{}, OutcomeClean, common.NewAppError("AI_UNREACHABLE", endpoint, common.ErrAiUnavailable)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
		)
		return DocumentFields{}, OutcomeClean, common.NewAppError("AI_MALFORMED", "response envelope", common.ErrMalformedAi)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices", "req_id", rid)
		return DocumentFields{}, OutcomeClean, common.NewAppError("AI_MALFORMED", "no choices", common.ErrMalformedAi)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	outcome := OutcomeClean
	payload := []byte(content)
	if err := ValidateJSONAgainstSchema(schema, payload); err != nil {
		span, spanErr := ExtractJSONSpan(content)
		if spanErr != nil {
			c.log.Error("llm.extract.schema_validation_failed",
				"req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return DocumentFields{}, OutcomeClean, common.NewAppError("AI_MALFORMED", "invalid json", common.ErrMalformedAi)
		}
		if vErr := ValidateJSONAgainstSchema(schema, []byte(span)); vErr != nil {
			c.log.Error("llm.extract.schema_validation_failed",
				"req_id", rid, "error", vErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return DocumentFields{}, OutcomeClean, common.NewAppError("AI_MALFORMED", "repaired json rejected", common.ErrMalformedAi)
		}
		c.log.Warn("llm.extract.repaired", "req_id", rid)
		payload = []byte(span)
		outcome = OutcomeRepaired
	}

	var out DocumentFields
	if err := json.Unmarshal(payload, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed", "req_id", rid, "error", err)
		return DocumentFields{}, OutcomeClean, common.NewAppError("AI_MALFORMED", "unmarshal fields", common.ErrMalformedAi)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"doc_type", out.DocumentType,
		"items", len(out.Items),
		"repaired", outcome == OutcomeRepaired,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, outcome, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
