package application

import (
	"context"
	"fmt"
	"sort"

	"vn.io.arda/provisioner/internal/domain"
)

// credentialSet is the run-scoped tenant → credential map. It is loaded with
// a single secret-store fetch at the start of a run and served from memory
// afterwards, so a rotated secret is only picked up by the next run.
type credentialSet struct {
	orgs map[string]domain.CredentialPair
}

func loadCredentials(ctx context.Context, src SecretSource) (*credentialSet, error) {
	orgs, err := src.Orgs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load org credentials: %w", err)
	}
	return &credentialSet{orgs: orgs}, nil
}

// Resolve returns the credential pair for a tenant name.
func (s *credentialSet) Resolve(tenant string) (domain.CredentialPair, error) {
	creds, ok := s.orgs[tenant]
	if !ok {
		return domain.CredentialPair{}, fmt.Errorf("%w: %q", domain.ErrUnknownTenant, tenant)
	}
	return creds, nil
}

// Names returns all tenant names in stable (sorted) order.
func (s *credentialSet) Names() []string {
	names := make([]string, 0, len(s.orgs))
	for name := range s.orgs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
