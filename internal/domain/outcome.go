package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for the non-transport half of the failure taxonomy.
var (
	ErrValidation    = errors.New("row validation failed")
	ErrUnknownTenant = errors.New("unknown tenant")
	ErrRoleNotFound  = errors.New("role not found")
	ErrUserNotFound  = errors.New("user not found")
)

// FailureKind classifies which step of the row state machine produced a
// failure. It is recorded on the outcome and in the audit store.
type FailureKind string

const (
	KindValidation    FailureKind = "validation"
	KindUnknownTenant FailureKind = "unknown_tenant"
	KindRoleNotFound  FailureKind = "role_not_found"
	KindRoleLookup    FailureKind = "role_lookup"
	KindCreate        FailureKind = "create"
	KindInvite        FailureKind = "invite"
	KindSearch        FailureKind = "search"
	KindDisable       FailureKind = "disable"
	KindUserNotFound  FailureKind = "user_not_found"
	KindUnknown       FailureKind = "unknown"
)

// StepError tags a remote-call error with the step that produced it,
// distinguishing e.g. a failed create from a failed invite.
type StepError struct {
	Kind FailureKind
	Err  error
}

func (e *StepError) Error() string { return string(e.Kind) + ": " + e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

// Step wraps err with the given failure kind.
func Step(kind FailureKind, err error) error {
	return &StepError{Kind: kind, Err: err}
}

// KindOf maps an error from the row state machine to its failure kind.
func KindOf(err error) FailureKind {
	var se *StepError
	if errors.As(err, &se) {
		return se.Kind
	}
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnknownTenant):
		return KindUnknownTenant
	case errors.Is(err, ErrRoleNotFound):
		return KindRoleNotFound
	case errors.Is(err, ErrUserNotFound):
		return KindUserNotFound
	}
	return KindUnknown
}

// OutcomeStatus is the terminal state of one row.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	// OutcomeSkipped marks the non-fatal delete-on-absent-user case.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// RowOutcome is produced exactly once per input row and never retried.
type RowOutcome struct {
	Row    Row           `json:"row"`
	Status OutcomeStatus `json:"status"`
	Kind   FailureKind   `json:"kind,omitempty"`
	Detail string        `json:"detail,omitempty"`
}

// BatchResult is the ledger entry for one consumed batch source.
type BatchResult struct {
	ID         string       `json:"id"`
	Ref        BatchRef     `json:"ref"`
	Mode       RowMode      `json:"mode"`
	Outcomes   []RowOutcome `json:"outcomes"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// NewBatchResult starts a result ledger for the given source.
func NewBatchResult(ref BatchRef, mode RowMode) *BatchResult {
	return &BatchResult{
		ID:        uuid.NewString(),
		Ref:       ref,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}
}

// Counts returns the number of succeeded, failed and skipped rows.
func (b *BatchResult) Counts() (succeeded, failed, skipped int) {
	for _, o := range b.Outcomes {
		switch o.Status {
		case OutcomeSucceeded:
			succeeded++
		case OutcomeFailed:
			failed++
		case OutcomeSkipped:
			skipped++
		}
	}
	return
}
