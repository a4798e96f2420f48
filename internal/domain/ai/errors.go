package ai

import "errors"

// ErrUnavailable indicates the completion service failed, timed out, or is
// not configured. Callers fall back to a locally generated reply.
var ErrUnavailable = errors.New("completion service unavailable")
