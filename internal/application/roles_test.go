package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vn.io.arda/provisioner/internal/domain"
)

func TestRoleCache_SingleListingPerKey(t *testing.T) {
	dir := newFakeDirectory()
	dir.roles = []domain.Role{{ID: "42", Name: "Admin"}, {ID: "7", Name: "Viewer"}}
	cache := newRoleCache(dir)
	creds := domain.CredentialPair{APIKey: "k", AppKey: "a"}

	id, err := cache.Resolve(context.Background(), creds, "acme", "Admin")
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	// Case-insensitive repeat hits the cache, no second listing.
	id, err = cache.Resolve(context.Background(), creds, "acme", "admin")
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	assert.Equal(t, []string{"roles"}, dir.calls)

	// A different tenant is a different key.
	_, err = cache.Resolve(context.Background(), creds, "globex", "Admin")
	require.NoError(t, err)
	assert.Equal(t, []string{"roles", "roles"}, dir.calls)
}

func TestRoleCache_NoNegativeCaching(t *testing.T) {
	dir := newFakeDirectory()
	dir.rolesErr = errors.New("status 500")
	cache := newRoleCache(dir)
	creds := domain.CredentialPair{}

	_, err := cache.Resolve(context.Background(), creds, "acme", "Admin")
	require.Error(t, err)
	assert.Equal(t, domain.KindRoleLookup, domain.KindOf(err))

	// After the backend recovers, the same key retries the listing.
	dir.rolesErr = nil
	dir.roles = []domain.Role{{ID: "42", Name: "Admin"}}
	id, err := cache.Resolve(context.Background(), creds, "acme", "Admin")
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	assert.Equal(t, []string{"roles", "roles"}, dir.calls)
}

func TestRoleCache_NotFoundAfterFullListing(t *testing.T) {
	dir := newFakeDirectory()
	dir.roles = []domain.Role{{ID: "7", Name: "Viewer"}}
	cache := newRoleCache(dir)

	_, err := cache.Resolve(context.Background(), domain.CredentialPair{}, "acme", "Admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}
