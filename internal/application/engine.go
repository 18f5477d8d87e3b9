package application

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"vn.io.arda/provisioner/internal/domain"
)

// engine runs the per-row provisioning state machine. It holds only
// run-scoped state (this run's credential set and role cache); the runner
// builds a fresh engine per batch.
type engine struct {
	dir   Directory
	creds *credentialSet
	roles *roleCache
}

func newEngine(dir Directory, creds *credentialSet) *engine {
	return &engine{dir: dir, creds: creds, roles: newRoleCache(dir)}
}

// processRow takes one row to a terminal outcome. Every error is caught at
// this boundary and converted to an outcome — a bad row must never abort the
// rest of the batch.
func (e *engine) processRow(ctx context.Context, row domain.Row) domain.RowOutcome {
	if err := row.Validate(); err != nil {
		log.Error().Err(err).Int("line", row.Line).Str("email", row.Email).Str("org", row.Org).
			Msg("row rejected before any network call")
		return failed(row, err)
	}

	creds, err := e.creds.Resolve(row.Org)
	if err != nil {
		log.Error().Err(err).Str("email", row.Email).Str("org", row.Org).Msg("credential resolution failed")
		return failed(row, err)
	}

	switch row.Mode {
	case domain.ModeDelete:
		return e.deleteUser(ctx, creds, row)
	default:
		return e.createUser(ctx, creds, row)
	}
}

// createUser resolves the role, creates the user, then immediately sends the
// invitation. If the create succeeds but the invite fails, the created,
// uninvited account is left in place — remediation is a targeted re-invite,
// not a rollback.
func (e *engine) createUser(ctx context.Context, creds domain.CredentialPair, row domain.Row) domain.RowOutcome {
	roleID, err := e.roles.Resolve(ctx, creds, row.Org, row.RoleName)
	if err != nil {
		log.Error().Err(err).Str("org", row.Org).Str("role", row.RoleName).Msg("role lookup failed")
		return failed(row, err)
	}

	user, err := e.dir.CreateUser(ctx, creds, row.Email, row.DisplayName(), roleID)
	if err != nil {
		log.Error().Err(err).Str("email", row.Email).Str("org", row.Org).Msg("user create failed")
		return failed(row, domain.Step(domain.KindCreate, err))
	}
	log.Info().Str("email", row.Email).Str("org", row.Org).Str("status", string(user.Status)).
		Msg("user created")

	sent, err := e.dir.SendInvite(ctx, creds, user.ID)
	if err != nil {
		log.Error().Err(err).Str("email", row.Email).Str("user_id", user.ID).Msg("invitation failed")
		return failed(row, domain.Step(domain.KindInvite, err))
	}
	log.Info().Str("email", row.Email).Int("invitations", sent).Msg("invitation sent")

	return domain.RowOutcome{Row: row, Status: domain.OutcomeSucceeded}
}

// deleteUser searches the tenant's listing for the email and disables the
// match. An absent user is a warning outcome, not a failure.
func (e *engine) deleteUser(ctx context.Context, creds domain.CredentialPair, row domain.Row) domain.RowOutcome {
	user, err := e.findByEmail(ctx, creds, row.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		log.Warn().Str("email", row.Email).Str("org", row.Org).Msg("user not found for deletion")
		return domain.RowOutcome{Row: row, Status: domain.OutcomeSkipped, Kind: domain.KindUserNotFound}
	}
	if err != nil {
		log.Error().Err(err).Str("email", row.Email).Str("org", row.Org).Msg("user search failed")
		return failed(row, err)
	}

	if err := e.dir.DisableUser(ctx, creds, user.ID); err != nil {
		log.Error().Err(err).Str("email", row.Email).Str("user_id", user.ID).Msg("disable failed")
		return failed(row, domain.Step(domain.KindDisable, err))
	}
	log.Info().Str("email", row.Email).Str("org", row.Org).Msg("user disabled")

	return domain.RowOutcome{Row: row, Status: domain.OutcomeSucceeded}
}

// findByEmail scans the full user listing for a case-insensitive email match.
// The platform offers no exact-email filter for this flow, so the scan is
// O(total users). Duplicate emails resolve to the first match in listing
// order, which the platform does not guarantee to be stable.
func (e *engine) findByEmail(ctx context.Context, creds domain.CredentialPair, email string) (domain.UserRecord, error) {
	pager := e.dir.ListUsers(creds, "")
	for pager.Next(ctx) {
		if u := pager.User(); strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	if err := pager.Err(); err != nil {
		return domain.UserRecord{}, domain.Step(domain.KindSearch, err)
	}
	return domain.UserRecord{}, domain.ErrUserNotFound
}

func failed(row domain.Row, err error) domain.RowOutcome {
	return domain.RowOutcome{
		Row:    row,
		Status: domain.OutcomeFailed,
		Kind:   domain.KindOf(err),
		Detail: err.Error(),
	}
}
