package domain

import "context"

// UserStatus is the remote platform's user lifecycle state.
type UserStatus string

const (
	StatusPending  UserStatus = "Pending"
	StatusActive   UserStatus = "Active"
	StatusDisabled UserStatus = "Disabled"
)

// UserRecord is a directory-side user. The remote platform owns it; this
// service only reads it or triggers create/disable transitions.
type UserRecord struct {
	ID     string
	Email  string
	Name   string
	Status UserStatus
}

// Role is a platform role as returned by the role listing.
type Role struct {
	ID   string
	Name string
}

// UserPager is a lazy cursor over a paginated user listing. Each Next call
// may issue at most one page request; the cursor terminates when the platform
// stops returning a next-page link. A pager is not restartable — it reads the
// remote directory's current state, not a snapshot.
type UserPager interface {
	// Next advances to the next record, fetching a new page when the current
	// one is exhausted. Returns false at end of listing or on error.
	Next(ctx context.Context) bool

	// User returns the record the cursor is positioned on. Only valid after
	// a true Next.
	User() UserRecord

	// Err returns the first transport or decode error encountered, if any.
	Err() error
}

// PendingUser is the projection reported for an invite-pending user.
type PendingUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// PendingReport maps tenant name to its invite-pending users, in listing order.
type PendingReport map[string][]PendingUser
