package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"reportdesk/api/internal/report"
)

// PostgresStore keeps one JSONB document per report date. Writes are
// whole-document replacements; section-level merging happens above this
// layer.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetReport returns nil with a nil error when no document exists for the
// date key.
func (s *PostgresStore) GetReport(ctx context.Context, dateKey string) (*report.Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM daily_reports WHERE report_date = $1`, dateKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", dateKey, err)
	}

	var doc report.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", dateKey, err)
	}
	return &doc, nil
}

// PutReport replaces the stored document for the date key wholesale.
func (s *PostgresStore) PutReport(ctx context.Context, dateKey string, doc *report.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", dateKey, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_reports (report_date, doc, version)
		VALUES ($1, $2, $3)
		ON CONFLICT (report_date) DO UPDATE
		SET doc = EXCLUDED.doc, version = EXCLUDED.version, updated_at = NOW()
	`, dateKey, raw, doc.Version)
	if err != nil {
		return fmt.Errorf("write report %s: %w", dateKey, err)
	}
	return nil
}

// ListReports returns report headers newest first.
func (s *PostgresStore) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT report_date,
		       COALESCE(doc->>'senderName', ''),
		       version,
		       updated_at,
		       COALESCE(doc->>'lastUpdatedBy', '')
		FROM daily_reports
		ORDER BY report_date DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	summaries := []ReportSummary{}
	for rows.Next() {
		var s ReportSummary
		if err := rows.Scan(&s.Date, &s.SenderName, &s.Version, &s.LastUpdated, &s.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("scan report summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report summaries: %w", err)
	}
	return summaries, nil
}
