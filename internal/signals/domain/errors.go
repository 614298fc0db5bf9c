package signals

import "errors"

// ErrIncompleteSpanData marks a span missing an end time other than the
// most recent one. Such spans violate the chain invariant and are
// excluded from accounting rather than failing the computation.
var ErrIncompleteSpanData = errors.New("signals: incomplete span data")

// ErrTimeoutExceeded indicates the caller deadline expired before the
// accounting finished. Partial sums are meaningless, so nothing is returned.
var ErrTimeoutExceeded = errors.New("signals: timeout exceeded")

// ErrInvalidWindow indicates a query window whose end precedes its start.
var ErrInvalidWindow = errors.New("signals: invalid window")
