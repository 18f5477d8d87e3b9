package domain

import "strings"

// Batch file name suffixes recognized by the runner. Anything else is
// skipped without touching the source object.
const (
	CreateSuffix = "create_user.csv"
	DeleteSuffix = "delete_user.csv"
)

// BatchRef identifies one delivered batch file in object storage.
type BatchRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Mode infers the provisioning mode from the object key suffix.
// ok is false for keys that match neither suffix.
func (r BatchRef) Mode() (mode RowMode, ok bool) {
	switch {
	case strings.HasSuffix(r.Key, CreateSuffix):
		return ModeCreate, true
	case strings.HasSuffix(r.Key, DeleteSuffix):
		return ModeDelete, true
	}
	return "", false
}

func (r BatchRef) String() string { return r.Bucket + "/" + r.Key }
