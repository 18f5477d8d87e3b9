package domain

import (
	"context"
	"time"
)

// OutcomeRecord is one persisted row outcome, flattened with its batch
// context for querying.
type OutcomeRecord struct {
	ID        string        `json:"id"`
	BatchID   string        `json:"batch_id"`
	ObjectKey string        `json:"object_key"`
	Mode      RowMode       `json:"mode"`
	TenantKey string        `json:"tenant_key"`
	Email     string        `json:"email"`
	Status    OutcomeStatus `json:"status"`
	Kind      FailureKind   `json:"kind,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// OutcomeRepository is the port for the durable provisioning audit trail.
// Implementation lives in infrastructure/postgres.
type OutcomeRepository interface {
	// RecordBatch persists every outcome of a completed batch.
	RecordBatch(ctx context.Context, result *BatchResult) error

	// ListRecent returns the newest outcome records, newest first.
	ListRecent(ctx context.Context, limit int) ([]OutcomeRecord, error)

	// PurgeOlderThan deletes audit records older than the given number of
	// days (TTL cleanup). Returns the number of rows removed.
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}
