package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search runs plainto_tsquery against the generated fts column on
// daily_reports, with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, `
		SELECT count(*)
		FROM daily_reports
		WHERE fts @@ plainto_tsquery('simple', $1)
	`, q.Text).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT report_date,
			COALESCE(doc->>'senderName', ''),
			ts_headline('simple', doc::text, plainto_tsquery('simple', $1), 'MaxFragments=1,MaxWords=30') AS snippet
		FROM daily_reports
		WHERE fts @@ plainto_tsquery('simple', $1)
		ORDER BY ts_rank(fts, plainto_tsquery('simple', $1)) DESC, report_date DESC
		LIMIT %d OFFSET %d`, limit, offset), q.Text)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Date, &r.SenderName, &r.Snippet); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns every stored report flattened for reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]ReportRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT report_date, COALESCE(doc->>'senderName', ''), doc::text
		FROM daily_reports
	`)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	defer rows.Close()

	records := make([]ReportRecord, 0)
	for rows.Next() {
		var r ReportRecord
		if err := rows.Scan(&r.Date, &r.SenderName, &r.Text); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return records, nil
}
