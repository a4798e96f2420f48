package sessions

import (
	"context"
	"time"
)

// Repository port (interface untuk persistence).
//
// Implementations store the whole Session as one opaque record per key; the
// internal layout of the record is not a compatibility surface. Callers are
// responsible for serializing access per key; repositories only need to make
// individual Load/Save calls safe.
type Repository interface {
	Load(ctx context.Context, key string) (*Session, error)
	Save(ctx context.Context, s *Session) error

	// DeleteIdle removes sessions whose last activity is before the cutoff
	// and returns how many were removed. Host-policy housekeeping hook.
	DeleteIdle(ctx context.Context, before time.Time) (int, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
