package activities

import "errors"

// ErrNotFound indicates a missing activity record.
var ErrNotFound = errors.New("activities: not found")

// ErrDuplicatePending is reported by the storage boundary when a
// concurrent create raced on the same (parameter, condition) pair. The
// tracker recovers by re-reading and applying the self-loop update; the
// error never reaches callers.
var ErrDuplicatePending = errors.New("activities: duplicate pending activity")
