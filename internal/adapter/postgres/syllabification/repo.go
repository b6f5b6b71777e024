// Package syllabification stores converted dictionary records in PostgreSQL.
package syllabification

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/pinyin-dict/internal/adapter/postgres"
	"github.com/heartmarshall/pinyin-dict/internal/domain"
)

const table = "syllabifications"

var columns = []string{
	"id", "run_id", "line_number", "pinyin_key", "entry", "syllables",
	"weight", "mode", "segmented", "fallback", "created_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides batch persistence for syllabification records.
type Repo struct {
	pool *pgxpool.Pool
	txm  *postgres.TxManager
}

// New creates a new Repo.
func New(pool *pgxpool.Pool, txm *postgres.TxManager) *Repo {
	return &Repo{pool: pool, txm: txm}
}

// Name identifies the sink in logs and metrics.
func (r *Repo) Name() string { return "postgres" }

// Write stores one chunk of records atomically.
func (r *Repo) Write(ctx context.Context, records []domain.Record) (int, error) {
	var inserted int
	err := r.txm.RunInTx(ctx, func(ctx context.Context) error {
		n, err := r.BulkInsert(ctx, records)
		inserted = n
		return err
	})
	return inserted, err
}

// BulkInsert inserts records using pgx.Batch. Records already stored for
// the same (run_id, pinyin_key, entry) are skipped via ON CONFLICT DO NOTHING.
// Returns the number of actually inserted rows.
func (r *Repo) BulkInsert(ctx context.Context, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		syllables := rec.Syllables
		if syllables == nil || !rec.Segmented {
			syllables = []string{}
		}
		batch.Queue(
			`INSERT INTO syllabifications (id, run_id, line_number, pinyin_key, entry, syllables, weight, mode, segmented, fallback, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (run_id, pinyin_key, entry) DO NOTHING`,
			rec.ID, rec.RunID, rec.Line, rec.Key, rec.Entry, syllables,
			rec.Weight, string(rec.Mode), rec.Segmented, rec.Fallback, rec.CreatedAt,
		)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int
	for i := range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return inserted, postgres.MapError(err, "syllabification", records[i].Key)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// FindByKey returns every stored record for a pinyin key in original line
// and weight order, newest first among equals.
func (r *Repo) FindByKey(ctx context.Context, key string) ([]domain.Record, error) {
	query, args, err := psql.
		Select(columns...).
		From(table).
		Where(sq.Eq{"pinyin_key": key}).
		OrderBy("line_number ASC", "weight DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "syllabification", key)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan syllabification: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "syllabification", key)
	}
	return out, nil
}

// CountByRun returns the number of records stored for runID, split into
// segmented and failed.
func (r *Repo) CountByRun(ctx context.Context, runID uuid.UUID) (segmented, failed int, err error) {
	query, args, err := psql.
		Select(
			"COUNT(*) FILTER (WHERE segmented)",
			"COUNT(*) FILTER (WHERE NOT segmented)",
		).
		From(table).
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build query: %w", err)
	}

	err = postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&segmented, &failed)
	if err != nil {
		return 0, 0, postgres.MapError(err, "run", runID.String())
	}
	return segmented, failed, nil
}

func scanRecord(row pgx.Row) (domain.Record, error) {
	var (
		rec  domain.Record
		mode string
	)
	err := row.Scan(
		&rec.ID, &rec.RunID, &rec.Line, &rec.Key, &rec.Entry, &rec.Syllables,
		&rec.Weight, &mode, &rec.Segmented, &rec.Fallback, &rec.CreatedAt,
	)
	rec.Mode = domain.Mode(mode)
	return rec, err
}
