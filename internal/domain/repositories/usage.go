package repositories

import (
	"context"
)

// UsageRepository is the per-user, per-day ledger of successful
// optimizations. Day keys are UTC calendar dates formatted as 2006-01-02.
type UsageRepository interface {
	// IncrementIfUnderLimit atomically increments the counter for
	// (userID, day) unless the increment would exceed limit. It returns the
	// new count and whether the increment was applied. A negative limit
	// means unmetered. Implementations must serialize concurrent increments
	// for the same key so the counter never passes the ceiling.
	IncrementIfUnderLimit(ctx context.Context, userID, day string, limit int) (count int, ok bool, err error)

	// CountFor returns the counter for (userID, day), zero when absent.
	CountFor(ctx context.Context, userID, day string) (int, error)
}
