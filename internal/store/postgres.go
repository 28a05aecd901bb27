// Package store implements the persistence collaborator against PostgreSQL.
//
// Every table and column identifier spliced into query text comes from the
// fixed category registry in internal/domain, never from upload content.
// Values always travel as query parameters.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/civicgrid/regionpulse/internal/domain"
)

// Postgres is a database-backed store handle. Construct it explicitly and
// pass it to consumers; it holds no state beyond the connection pool.
type Postgres struct {
	db *sql.DB
}

func New(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Init creates the upload log table. Category tables are created lazily on
// first append so that Exists stays meaningful for never-uploaded categories.
func (s *Postgres) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS upload_logs (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		category TEXT NOT NULL,
		size_bytes BIGINT NOT NULL,
		record_count INTEGER NOT NULL,
		status TEXT NOT NULL,
		uploader_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("init upload_logs: %w", err)
	}
	return nil
}

// Exists reports whether a category table has been created, i.e. whether the
// category has ever received an upload.
func (s *Postgres) Exists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
		table,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return exists, nil
}

// AppendBatch persists a normalized batch in a single transaction. Either the
// whole batch lands or none of it does.
func (s *Postgres) AppendBatch(ctx context.Context, cat domain.Category, records []domain.NormalizedRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableSQL(cat)); err != nil {
		return fmt.Errorf("ensure table %s: %w", cat.Table, err)
	}

	insert := insertSQL(cat)
	for _, rec := range records {
		args := make([]interface{}, 0, 4+len(cat.Fields))
		args = append(args, rec.State, rec.District, rec.Date, rec.Category)
		for _, f := range cat.Fields {
			args = append(args, rec.Fields[f])
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", cat.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s batch: %w", cat.Table, err)
	}
	return nil
}

// SumGroupedByState sums the field expression per state.
func (s *Postgres) SumGroupedByState(ctx context.Context, table, expr string) (map[string]int64, error) {
	q := fmt.Sprintf(`SELECT state, COALESCE(SUM(%s), 0) FROM %s GROUP BY state`,
		expr, pq.QuoteIdentifier(table))

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sum by state from %s: %w", table, err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var state string
		var total int64
		if err := rows.Scan(&state, &total); err != nil {
			return nil, err
		}
		if state != "" {
			totals[state] = total
		}
	}
	return totals, rows.Err()
}

// SumGroupedByMonth sums the field expression per YYYY-MM period, most recent
// first, at most limit rows.
func (s *Postgres) SumGroupedByMonth(ctx context.Context, table, expr string, limit int) ([]domain.TrendPoint, error) {
	q := fmt.Sprintf(
		`SELECT substr(date, 1, 7) AS period, COALESCE(SUM(%s), 0) FROM %s GROUP BY period ORDER BY period DESC LIMIT $1`,
		expr, pq.QuoteIdentifier(table))

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("sum by month from %s: %w", table, err)
	}
	defer rows.Close()

	var points []domain.TrendPoint
	for rows.Next() {
		var p domain.TrendPoint
		if err := rows.Scan(&p.Period, &p.Value); err != nil {
			return nil, err
		}
		if p.Period != "" {
			points = append(points, p)
		}
	}
	return points, rows.Err()
}

// SumFields returns the per-column sums for the given fields, in order.
func (s *Postgres) SumFields(ctx context.Context, table string, fields []string) ([]int64, error) {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = fmt.Sprintf("COALESCE(SUM(%s), 0)", pq.QuoteIdentifier(f))
	}
	q := fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(cols, ", "), pq.QuoteIdentifier(table))

	sums := make([]int64, len(fields))
	dest := make([]interface{}, len(fields))
	for i := range sums {
		dest[i] = &sums[i]
	}
	if err := s.db.QueryRowContext(ctx, q).Scan(dest...); err != nil {
		return nil, fmt.Errorf("sum fields from %s: %w", table, err)
	}
	return sums, nil
}

// InsertUploadLog appends one row to the upload audit history.
func (s *Postgres) InsertUploadLog(ctx context.Context, e domain.UploadLog) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO upload_logs (id, file_name, category, size_bytes, record_count, status, uploader_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.FileName, e.Category, e.SizeBytes, e.RecordCount, e.Status, e.UploaderID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert upload log: %w", err)
	}
	return nil
}

// RecentUploadLogs returns the newest upload log rows, newest first.
func (s *Postgres) RecentUploadLogs(ctx context.Context, limit int) ([]domain.UploadLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, category, size_bytes, record_count, status, uploader_id, created_at
		 FROM upload_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list upload logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.UploadLog
	for rows.Next() {
		var e domain.UploadLog
		if err := rows.Scan(&e.ID, &e.FileName, &e.Category, &e.SizeBytes,
			&e.RecordCount, &e.Status, &e.UploaderID, &e.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

// CountUploadLogs returns the total number of recorded uploads.
func (s *Postgres) CountUploadLogs(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM upload_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count upload logs: %w", err)
	}
	return n, nil
}

// Reset drops every category table and the upload history. Normalized records
// are never mutated in place; this wholesale reset is the only delete path.
func (s *Postgres) Reset(ctx context.Context) error {
	tables := make([]string, 0, len(domain.Categories)+2)
	for _, c := range domain.Categories {
		tables = append(tables, c.Table)
	}
	tables = append(tables, "misc_data", "upload_logs")

	for _, t := range tables {
		q := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, pq.QuoteIdentifier(t))
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("drop %s: %w", t, err)
		}
	}
	return s.Init(ctx)
}

// createTableSQL builds the CREATE TABLE statement for a category from
// reference data.
func createTableSQL(cat domain.Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (state TEXT NOT NULL, district TEXT, date TEXT NOT NULL, category TEXT NOT NULL",
		pq.QuoteIdentifier(cat.Table))
	for _, f := range cat.Fields {
		fmt.Fprintf(&b, ", %s BIGINT NOT NULL DEFAULT 0", pq.QuoteIdentifier(f))
	}
	b.WriteString(")")
	return b.String()
}

func insertSQL(cat domain.Category) string {
	cols := []string{"state", "district", "date", "category"}
	for _, f := range cat.Fields {
		cols = append(cols, pq.QuoteIdentifier(f))
	}
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(cat.Table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}
