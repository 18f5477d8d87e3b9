// Package vault loads the per-organization Datadog credential map from a
// HashiCorp Vault KV v2 secret. The secret payload is the JSON blob
//
//	{"orgs": {"<org>": {"keys": {"apiKey": "...", "appKey": "..."}}}}
//
// stored under secret/data/<name>.
package vault

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/vault/api"

	"vn.io.arda/provisioner/internal/domain"
)

// Source implements application.SecretSource.
type Source struct {
	client *api.Client
	name   string
}

// New creates a Source. The client is configured from the standard VAULT_*
// environment variables; a non-empty address or token overrides them.
func New(address, token, secretName string) (*Source, error) {
	cfg := api.DefaultConfig()
	if cfg.Error != nil {
		return nil, cfg.Error
	}
	if address != "" {
		cfg.Address = address
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if token != "" {
		client.SetToken(token)
	}
	return &Source{client: client, name: secretName}, nil
}

type secretPayload struct {
	Orgs map[string]struct {
		Keys struct {
			APIKey string `json:"apiKey"`
			AppKey string `json:"appKey"`
		} `json:"keys"`
	} `json:"orgs"`
}

// Orgs fetches the secret once and returns the tenant → credential map.
func (s *Source) Orgs(ctx context.Context) (map[string]domain.CredentialPair, error) {
	sec, err := s.client.Logical().ReadWithContext(ctx, "secret/data/"+s.name)
	if err != nil {
		return nil, fmt.Errorf("read secret %s: %w", s.name, err)
	}
	if sec == nil {
		return nil, fmt.Errorf("secret %s not found", s.name)
	}

	// KV v2 nests the stored fields under "data".
	data, ok := sec.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret %s: unexpected payload shape", s.name)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("re-encode secret %s: %w", s.name, err)
	}
	var payload secretPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode secret %s: %w", s.name, err)
	}

	orgs := make(map[string]domain.CredentialPair, len(payload.Orgs))
	for name, org := range payload.Orgs {
		orgs[name] = domain.CredentialPair{APIKey: org.Keys.APIKey, AppKey: org.Keys.AppKey}
	}
	return orgs, nil
}
