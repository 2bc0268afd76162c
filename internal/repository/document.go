// Package repository persists parsed documents in SQLite. Summary
// columns are queryable; the full record rides along as JSON.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rubilakse/docparse/internal/common"
	"github.com/rubilakse/docparse/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id           TEXT PRIMARY KEY,
    filename     TEXT NOT NULL,
    doc_type     TEXT NOT NULL,
    doc_number   TEXT,
    issue_date   TEXT,
    seller_name  TEXT,
    buyer_name   TEXT,
    currency     TEXT NOT NULL,
    total        REAL,
    method       TEXT NOT NULL,
    confidence   REAL NOT NULL,
    processed_at TEXT NOT NULL,
    payload      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_doc_type ON documents(doc_type);
CREATE INDEX IF NOT EXISTS idx_documents_processed_at ON documents(processed_at);
`

// DocumentRepository stores and reads parsed document records.
type DocumentRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the database at path with the WAL pragmas and
// runs migrations. Use ":memory:" in tests.
func Open(path string, busyTimeout time.Duration, logger *slog.Logger) (*DocumentRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=ON", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.NewAppError("DB_OPEN", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, common.NewAppError("DB_MIGRATE", path, err)
	}

	logger.Info("repository.opened", "path", path)
	return &DocumentRepository{db: db, log: logger}, nil
}

// Close closes the underlying database connection.
func (r *DocumentRepository) Close() error { return r.db.Close() }

// Save upserts one parsed document keyed by its id.
func (r *DocumentRepository) Save(ctx context.Context, doc *entity.ParsedDocument) error {
	v := common.NewValidator()
	v.Field("filename", doc.Source.Filename, common.Required)
	v.Field("currency", doc.Meta.Currency, common.CurrencyCode)
	if doc.Seller.TaxID != nil {
		v.Field("seller.tax_id", doc.Seller.TaxID, common.TaxID)
	}
	if doc.Buyer.TaxID != nil {
		v.Field("buyer.tax_id", doc.Buyer.TaxID, common.TaxID)
	}
	if v.HasErrors() {
		return common.NewAppError("DOC_INVALID", v.Error().Error(), common.ErrValidation)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return common.NewAppError("DOC_ENCODE", doc.ID.String(), err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (id, filename, doc_type, doc_number, issue_date, seller_name, buyer_name,
                       currency, total, method, confidence, processed_at, payload)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    filename=excluded.filename, doc_type=excluded.doc_type, doc_number=excluded.doc_number,
    issue_date=excluded.issue_date, seller_name=excluded.seller_name, buyer_name=excluded.buyer_name,
    currency=excluded.currency, total=excluded.total, method=excluded.method,
    confidence=excluded.confidence, processed_at=excluded.processed_at, payload=excluded.payload`,
		doc.ID.String(),
		doc.Source.Filename,
		string(doc.Meta.DocType),
		nullableStr(doc.Meta.Number),
		nullableStr(doc.Meta.IssueDate),
		nullableStr(doc.Seller.Name),
		nullableStr(doc.Buyer.Name),
		doc.Meta.Currency,
		nullableFloat(doc.Summary.Total),
		string(doc.Method),
		doc.Confidence,
		doc.ProcessedAt.Format(time.RFC3339),
		string(payload),
	)
	if err != nil {
		return common.NewAppError("DOC_SAVE", doc.ID.String(), errors.Join(common.ErrDatabase, err))
	}

	r.log.Debug("repository.saved", "id", doc.ID, "file", doc.Source.Filename)
	return nil
}

// GetByID loads the full record for one document id.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*entity.ParsedDocument, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("DOC_NOT_FOUND", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DOC_GET", id, errors.Join(common.ErrDatabase, err))
	}

	var doc entity.ParsedDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, common.NewAppError("DOC_DECODE", id, err)
	}
	return &doc, nil
}

// Summary is one row of the document listing.
type Summary struct {
	ID         string
	Filename   string
	DocType    string
	DocNumber  *string
	IssueDate  *string
	SellerName *string
	Total      *float64
	Currency   string
	Method     string
	Confidence float32
}

// List returns document summaries newest first.
func (r *DocumentRepository) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, doc_type, doc_number, issue_date, seller_name, total, currency, method, confidence
FROM documents ORDER BY processed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, common.NewAppError("DOC_LIST", "", errors.Join(common.ErrDatabase, err))
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Filename, &s.DocType, &s.DocNumber, &s.IssueDate,
			&s.SellerName, &s.Total, &s.Currency, &s.Method, &s.Confidence); err != nil {
			return nil, common.NewAppError("DOC_LIST", "scan", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullableStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
