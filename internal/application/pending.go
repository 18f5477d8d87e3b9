package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"vn.io.arda/provisioner/internal/domain"
)

// PendingReport paginates every known tenant's user listing filtered to the
// pending state and aggregates the projections per tenant, in listing order.
//
// Unlike the provisioning engine there is no per-tenant isolation here: the
// first tenant whose listing fails aborts the whole report.
func (s *Service) PendingReport(ctx context.Context) (domain.PendingReport, error) {
	creds, err := loadCredentials(ctx, s.secrets)
	if err != nil {
		return nil, err
	}

	report := make(domain.PendingReport, len(creds.orgs))
	for _, tenant := range creds.Names() {
		keys, err := creds.Resolve(tenant)
		if err != nil {
			return nil, err
		}

		users, err := s.pendingUsers(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("list pending users for %s: %w", tenant, err)
		}
		report[tenant] = users
		log.Debug().Str("org", tenant).Int("pending", len(users)).Msg("tenant pending listing done")
	}
	return report, nil
}

func (s *Service) pendingUsers(ctx context.Context, creds domain.CredentialPair) ([]domain.PendingUser, error) {
	pending := []domain.PendingUser{}
	pager := s.dir.ListUsers(creds, domain.StatusPending)
	for pager.Next(ctx) {
		u := pager.User()
		// Guard against the server-side filter drifting: only pending
		// records make the report.
		if u.Status != domain.StatusPending {
			continue
		}
		pending = append(pending, domain.PendingUser{ID: u.ID, Email: u.Email, Name: u.Name})
	}
	if err := pager.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}
