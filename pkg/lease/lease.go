package lease

import (
	"context"
	"time"
)

// Lease guards the single live voice session. Only one holder may own it at a
// time and ownership lapses after the TTL unless refreshed.
type Lease interface {
	// Acquire takes the lease for holder. It reports false if somebody else
	// owns it.
	Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error)

	// Refresh extends the lease. It reports false if holder lost it.
	Refresh(ctx context.Context, holder string, ttl time.Duration) (bool, error)

	// Release gives the lease up. Releasing a lease held by somebody else is a
	// no-op.
	Release(ctx context.Context, holder string) error

	// Holder returns the current owner, if any.
	Holder(ctx context.Context) (string, bool, error)
}
