package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"vn.io.arda/provisioner/internal/domain"
)

type roleKey struct {
	tenant string
	role   string // lowercased; role names are display strings, not keys
}

// roleCache resolves (tenant, role name) to a platform role id with one role
// listing per unique key. The cache is scoped to a single batch run — it is
// created fresh by the runner, so repeated invocations never leak cached ids
// across runs. Negative results are not cached: a failed lookup is retried
// by the next row with the same key.
type roleCache struct {
	dir Directory

	mu  sync.Mutex
	ids map[roleKey]string
}

func newRoleCache(dir Directory) *roleCache {
	return &roleCache{dir: dir, ids: make(map[roleKey]string)}
}

// Resolve returns the role id for a case-insensitive role name match.
// The lock is held across the listing call so concurrent callers cannot race
// to duplicate lookups for the same key.
func (c *roleCache) Resolve(ctx context.Context, creds domain.CredentialPair, tenant, roleName string) (string, error) {
	key := roleKey{tenant: tenant, role: strings.ToLower(roleName)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.ids[key]; ok {
		return id, nil
	}

	roles, err := c.dir.ListRoles(ctx, creds)
	if err != nil {
		return "", domain.Step(domain.KindRoleLookup, fmt.Errorf("list roles for %s: %w", tenant, err))
	}

	for _, role := range roles {
		if strings.EqualFold(role.Name, roleName) {
			c.ids[key] = role.ID
			return role.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q in org %s", domain.ErrRoleNotFound, roleName, tenant)
}
