package triggers

import "errors"

// ErrNotConfigured is returned when a hook that must produce a result is
// called without a function installed.
var ErrNotConfigured = errors.New("triggers: hook not configured")
