package signals

import (
	"context"
	"time"
)

// DurationBreakdown holds the per-case totals of one accounting run.
// The four cases partition every asserted span overlapping the window;
// a span contributes to exactly one of them.
type DurationBreakdown struct {
	ExceedSeconds float64
	WithinSeconds float64
	HeadSeconds   float64
	TailSeconds   float64
}

// Total returns the summed asserted seconds across all four cases.
func (b DurationBreakdown) Total() float64 {
	return b.ExceedSeconds + b.WithinSeconds + b.HeadSeconds + b.TailSeconds
}

// TotalAssertedSeconds computes the total time the signal was asserted
// inside [windowStart, windowEnd]. Spans that only partially overlap the
// window are trimmed here; the span source may return any superset of
// overlapping spans.
func TotalAssertedSeconds(ctx context.Context, spans []StateSpan, windowStart, windowEnd time.Time) (float64, error) {
	breakdown, _, err := Accumulate(ctx, spans, windowStart, windowEnd, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return breakdown.Total(), nil
}

// Accumulate partitions the asserted spans into the four disjoint overlap
// cases and sums each independently:
//
//	Exceed: span.start <= window.start && span.end >= window.end
//	        -> the full window length
//	Within: window.start <= span.start && span.end <= window.end
//	        -> the pre-computed span duration
//	Head:   span.start <= window.start && window.start < span.end <= window.end
//	        -> span.end - window.start
//	Tail:   window.start <= span.start < window.end && span.end > window.end
//	        -> window.end - span.start
//
// The cases are tried in that order, so a span matches at most one even at
// the shared boundaries. An open span is clamped to now only when its
// signal has nothing after it: a span marked Superseded by the source, or
// one with a later-starting span in the input, violates the chain
// invariant and is returned in excluded instead of being counted.
func Accumulate(ctx context.Context, spans []StateSpan, windowStart, windowEnd, now time.Time) (DurationBreakdown, []StateSpan, error) {
	var breakdown DurationBreakdown
	if windowEnd.Before(windowStart) {
		return breakdown, nil, ErrInvalidWindow
	}
	if !windowEnd.After(windowStart) {
		return breakdown, nil, nil
	}

	var latestStart time.Time
	for _, span := range spans {
		if span.StartTime.After(latestStart) {
			latestStart = span.StartTime
		}
	}

	var excluded []StateSpan
	for _, span := range spans {
		if err := deadlineErr(ctx); err != nil {
			return DurationBreakdown{}, nil, err
		}
		if !span.Asserted {
			continue
		}

		end := span.EndTime
		duration := span.DurationSeconds
		if span.Open() {
			if span.Superseded || !span.StartTime.Equal(latestStart) {
				excluded = append(excluded, span)
				continue
			}
			end = now
			duration = end.Sub(span.StartTime).Seconds()
		}
		if !end.After(span.StartTime) {
			continue
		}

		start := span.StartTime
		switch {
		case !start.After(windowStart) && !end.Before(windowEnd):
			breakdown.ExceedSeconds += windowEnd.Sub(windowStart).Seconds()
		case !windowStart.After(start) && !end.After(windowEnd):
			breakdown.WithinSeconds += duration
		case !start.After(windowStart) && end.After(windowStart) && !end.After(windowEnd):
			breakdown.HeadSeconds += end.Sub(windowStart).Seconds()
		case !windowStart.After(start) && start.Before(windowEnd) && end.After(windowEnd):
			breakdown.TailSeconds += windowEnd.Sub(start).Seconds()
		}
	}
	return breakdown, excluded, nil
}

func deadlineErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeoutExceeded
		}
		return ctx.Err()
	default:
		return nil
	}
}
