package application

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"vn.io.arda/provisioner/internal/domain"
)

// Service holds the provisioning use-cases. Long-lived dependencies only;
// per-run state (credential set, role cache) is rebuilt for every batch.
type Service struct {
	secrets SecretSource
	dir     Directory
	store   BatchStore
	repo    domain.OutcomeRepository
	ledger  *Ledger
}

// NewService creates the application Service.
func NewService(secrets SecretSource, dir Directory, store BatchStore, repo domain.OutcomeRepository, ledger *Ledger) *Service {
	return &Service{secrets: secrets, dir: dir, store: store, repo: repo, ledger: ledger}
}

// RunBatch consumes one delivered batch file: infer the mode from the key
// suffix, stream rows through the engine, then remove the source. A key that
// matches neither suffix is skipped entirely and the object left untouched.
//
// Row failures never surface here — they are final-state entries in the
// returned result. Only batch-level problems (unreadable secret, unreadable
// object) are returned as errors.
func (s *Service) RunBatch(ctx context.Context, ref domain.BatchRef) (*domain.BatchResult, error) {
	mode, ok := ref.Mode()
	if !ok {
		log.Debug().Str("object", ref.String()).Msg("object name matches no batch suffix, skipping")
		return nil, nil
	}

	creds, err := loadCredentials(ctx, s.secrets)
	if err != nil {
		return nil, err
	}
	eng := newEngine(s.dir, creds)

	rc, err := s.store.Open(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("open batch source %s: %w", ref, err)
	}

	result := domain.NewBatchResult(ref, mode)
	s.streamRows(ctx, eng, rc, mode, result)
	_ = rc.Close()

	// Removal is unconditional once the stream is exhausted: failed rows are
	// final in the outcome ledger, not retryable by reprocessing the file.
	if err := s.store.Remove(ctx, ref); err != nil {
		log.Error().Err(err).Str("object", ref.String()).Msg("failed to remove processed batch source")
	}

	result.FinishedAt = time.Now().UTC()
	s.record(ctx, result)

	succeeded, failed, skipped := result.Counts()
	log.Info().Str("batch_id", result.ID).Str("object", ref.String()).Str("mode", string(mode)).
		Int("succeeded", succeeded).Int("failed", failed).Int("skipped", skipped).
		Msg("batch completed")
	return result, nil
}

// streamRows parses the delimited source and feeds each row to the engine.
// The first line is a header; columns are matched by name.
func (s *Service) streamRows(ctx context.Context, eng *engine, r io.Reader, mode domain.RowMode, result *domain.BatchResult) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Error().Err(err).Str("object", result.Ref.String()).Msg("unreadable batch header")
		}
		return
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Error().Err(err).Int("line", line).Str("object", result.Ref.String()).
				Msg("unreadable batch row, stopping stream")
			return
		}

		field := func(name string) string {
			if i, ok := cols[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		row := domain.Row{
			Mode:     mode,
			Email:    field("email"),
			Name:     field("name"),
			Org:      field("org"),
			RoleName: field("role"),
			Line:     line,
		}
		result.Outcomes = append(result.Outcomes, eng.processRow(ctx, row))
	}
}

// record writes the result to the in-memory ledger and the audit store.
// An audit write failure does not reopen the already-completed outcomes.
func (s *Service) record(ctx context.Context, result *domain.BatchResult) {
	if s.ledger != nil {
		s.ledger.Record(result)
	}
	if s.repo == nil {
		return
	}
	if err := s.repo.RecordBatch(ctx, result); err != nil {
		log.Error().Err(err).Str("batch_id", result.ID).Msg("failed to persist batch outcomes")
	}
}

// PurgeAudit deletes audit records older than the retention window.
// Called by the background scheduler.
func (s *Service) PurgeAudit(ctx context.Context, days int) {
	if s.repo == nil {
		return
	}
	count, err := s.repo.PurgeOlderThan(ctx, days)
	if err != nil {
		log.Error().Err(err).Msg("outcome audit purge failed")
		return
	}
	log.Info().Int64("deleted", count).Int("older_than_days", days).Msg("outcome audit purge completed")
}
