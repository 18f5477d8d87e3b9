package domain

// CredentialPair is the API/application key pair scoped to one Datadog
// organization. It must never appear in logs or error messages; the
// Stringer implementation redacts it so accidental %v formatting is safe.
type CredentialPair struct {
	APIKey string
	AppKey string
}

func (CredentialPair) String() string { return "[redacted]" }

// IsZero reports whether either half of the pair is missing.
func (c CredentialPair) IsZero() bool {
	return c.APIKey == "" || c.AppKey == ""
}

// Tenant is one isolated Datadog organization known to the secret store.
type Tenant struct {
	Name string
	Keys CredentialPair
}
