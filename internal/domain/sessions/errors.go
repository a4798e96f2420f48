package sessions

import "errors"

// ErrNotFound indicates an operation against a session key that was never
// created (or was already purged).
var ErrNotFound = errors.New("session not found")
