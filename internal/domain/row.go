package domain

import "fmt"

// RowMode selects the provisioning flow a batch row goes through.
type RowMode string

const (
	ModeCreate RowMode = "create"
	ModeDelete RowMode = "delete"
)

// Row is one unit of provisioning work parsed from a batch file.
// Create rows need email, org and role; name defaults to the email address.
// Delete rows need email and org (org only selects credentials).
type Row struct {
	Mode     RowMode
	Email    string
	Name     string
	Org      string
	RoleName string
	// Line is the 1-based data line in the source file, for log context.
	Line int
}

// DisplayName returns the name to create the user with, defaulting to email.
func (r Row) DisplayName() string {
	if r.Name == "" {
		return r.Email
	}
	return r.Name
}

// Validate rejects rows with missing required fields before any network call.
func (r Row) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("missing email: %w", ErrValidation)
	}
	if r.Org == "" {
		return fmt.Errorf("missing org: %w", ErrValidation)
	}
	if r.Mode == ModeCreate && r.RoleName == "" {
		return fmt.Errorf("missing role: %w", ErrValidation)
	}
	return nil
}
