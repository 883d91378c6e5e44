package ports

import "context"

// AccountPort is the slice of the account backend the table server needs.
type AccountPort interface {
	// SetDisplayName changes the name shown at tables. The username is left alone.
	SetDisplayName(ctx context.Context, userID, displayName string) error
}
