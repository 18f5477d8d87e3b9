package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vn.io.arda/provisioner/internal/domain"
)

// Repository is the PostgreSQL implementation of domain.OutcomeRepository.
//
// Schema:
//
//	CREATE TABLE provisioning_outcomes (
//	    id           UUID PRIMARY KEY,
//	    batch_id     UUID NOT NULL,
//	    object_key   TEXT NOT NULL,
//	    mode         TEXT NOT NULL,
//	    tenant_key   TEXT NOT NULL,
//	    email        TEXT NOT NULL,
//	    status       TEXT NOT NULL,
//	    failure_kind TEXT NOT NULL DEFAULT '',
//	    detail       TEXT NOT NULL DEFAULT '',
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new postgres Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RecordBatch inserts every outcome of a completed batch in one statement.
func (r *Repository) RecordBatch(ctx context.Context, result *domain.BatchResult) error {
	if len(result.Outcomes) == 0 {
		return nil
	}

	const paramsPerRow = 9
	args := make([]any, 0, len(result.Outcomes)*paramsPerRow)
	values := make([]string, 0, len(result.Outcomes))

	for i, o := range result.Outcomes {
		base := i * paramsPerRow
		values = append(values, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		args = append(args,
			uuid.New(), result.ID, result.Ref.Key, string(result.Mode),
			o.Row.Org, o.Row.Email, string(o.Status), string(o.Kind), o.Detail,
		)
	}

	query := "INSERT INTO provisioning_outcomes (id, batch_id, object_key, mode, tenant_key, email, status, failure_kind, detail) VALUES " +
		joinStrings(values, ",")

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert batch outcomes: %w", err)
	}
	return nil
}

// ListRecent returns the newest outcome records, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]domain.OutcomeRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, batch_id, object_key, mode, tenant_key, email, status, failure_kind, detail, created_at
		FROM provisioning_outcomes
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var results []domain.OutcomeRecord
	for rows.Next() {
		var rec domain.OutcomeRecord
		var mode, status, kind string
		err := rows.Scan(&rec.ID, &rec.BatchID, &rec.ObjectKey, &mode, &rec.TenantKey,
			&rec.Email, &status, &kind, &rec.Detail, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		rec.Mode = domain.RowMode(mode)
		rec.Status = domain.OutcomeStatus(status)
		rec.Kind = domain.FailureKind(kind)
		results = append(results, rec)
	}
	return results, rows.Err()
}

// PurgeOlderThan deletes audit records older than the given number of days.
func (r *Repository) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM provisioning_outcomes WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge outcomes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// joinStrings joins a slice of strings with a separator.
func joinStrings(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	result := parts[0]
	for _, p := range parts[1:] {
		result += sep + p
	}
	return result
}
