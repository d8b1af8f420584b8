package ports

import "context"

// LoginAttemptTracker counts consecutive failed logins per account.
type LoginAttemptTracker interface {
	RecordFailure(ctx context.Context, userID string) (int64, error)
	Reset(ctx context.Context, userID string) error
}
