package repository

import "context"

// PresenceRepository tracks which actors are actively polling. Entries
// expire on their own; a failed touch is never fatal to the caller.
type PresenceRepository interface {
	Touch(ctx context.Context, actor string) error
	Active(ctx context.Context) ([]string, error)
}
