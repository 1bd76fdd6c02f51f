package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"candlewatch/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecordRepository persists canonical technical-analysis records. The
// full record lands as JSONB; symbol/provider/scraped_at are lifted
// into columns for filtering.
type RecordRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewRecordRepository(pool PgxPool, tracer trace.Tracer) *RecordRepository {
	return &RecordRepository{pool: pool, tracer: tracer}
}

func (r *RecordRepository) RunMigrations(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS technical_analyses (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			provider TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			scraped_at TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_technical_analyses_symbol_scraped_at
			ON technical_analyses (symbol, scraped_at DESC);
	`)
	return err
}

// InsertRecord writes one record. Callers treat failures as
// PersistError: logged, never fatal to the acquisition cycle.
func (r *RecordRepository) InsertRecord(ctx context.Context, record *domain.TechnicalAnalysisRecord) error {
	_, span := r.tracer.Start(ctx, "record-repo.insert-record")
	defer span.End()

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO technical_analyses (symbol, provider, price, scraped_at, payload)
		 VALUES ($1, $2, $3, $4, $5)`,
		strings.ToUpper(record.Symbol),
		record.Metadata.Provider,
		record.Price,
		record.ScrapedAt.UTC(),
		payload,
	)
	return err
}

// LatestRecords returns the most recent records, newest first,
// optionally filtered to one symbol.
func (r *RecordRepository) LatestRecords(ctx context.Context, symbol string, limit int) ([]*domain.TechnicalAnalysisRecord, error) {
	_, span := r.tracer.Start(ctx, "record-repo.latest-records")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	args := make([]any, 0, 2)
	var sb strings.Builder
	sb.WriteString(`SELECT payload FROM technical_analyses WHERE 1=1`)
	if symbol != "" {
		args = append(args, strings.ToUpper(symbol))
		sb.WriteString(fmt.Sprintf(" AND symbol = $%d", len(args)))
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY scraped_at DESC LIMIT $%d", len(args)))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.TechnicalAnalysisRecord, 0, limit)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		record := &domain.TechnicalAnalysisRecord{}
		if err := json.Unmarshal(payload, record); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
