package status

import "errors"

// ErrUnknownGroup indicates the requested group has no parameters.
var ErrUnknownGroup = errors.New("status: unknown group")
