package application

import (
	"context"
	"io"

	"vn.io.arda/provisioner/internal/domain"
)

// Directory wraps the remote monitoring platform's user and role surface.
// The default implementation calls the Datadog v2 REST API; fakes are used
// in tests.
type Directory interface {
	// CreateUser creates a user bound to the given role and returns the
	// platform-side record (id and reported status).
	CreateUser(ctx context.Context, creds domain.CredentialPair, email, name, roleID string) (domain.UserRecord, error)

	// SendInvite emails an invitation referencing an already-created user.
	// Returns the number of invitations the platform reports as sent.
	SendInvite(ctx context.Context, creds domain.CredentialPair, userID string) (int, error)

	// DisableUser disables the user with the given id.
	DisableUser(ctx context.Context, creds domain.CredentialPair, userID string) error

	// ListRoles returns every role visible to the credentials.
	ListRoles(ctx context.Context, creds domain.CredentialPair) ([]domain.Role, error)

	// ListUsers returns a lazy pager over the tenant's users, optionally
	// filtered by status. An empty status lists everyone.
	ListUsers(creds domain.CredentialPair, status domain.UserStatus) domain.UserPager
}

// BatchStore is the object-storage boundary the runner needs: open a
// delivered batch file and remove it once consumed.
type BatchStore interface {
	Open(ctx context.Context, ref domain.BatchRef) (io.ReadCloser, error)
	Remove(ctx context.Context, ref domain.BatchRef) error
}

// SecretSource loads the per-organization credential map from the secret
// store. Called once per run; the result is never refreshed mid-run.
type SecretSource interface {
	Orgs(ctx context.Context) (map[string]domain.CredentialPair, error)
}
