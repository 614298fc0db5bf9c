package application

import (
	"context"
	"errors"
	"log"
	"time"

	masterdata "machinehealth-cloud/internal/masterdata/domain"
	"machinehealth-cloud/internal/observability/metrics"
	signals "machinehealth-cloud/internal/signals/domain"
)

// SpanSource fetches state spans overlapping a window. Implementations
// may return any superset of the overlapping spans; trimming happens in
// the accumulator.
type SpanSource interface {
	SpansOverlapping(ctx context.Context, machineName string, state signals.MachineState, windowStart, windowEnd time.Time) ([]signals.StateSpan, error)
}

// MachineDirectory resolves machine master data by name. A nil machine
// with a nil error means the machine does not exist.
type MachineDirectory interface {
	GetByName(ctx context.Context, name string) (*masterdata.Machine, error)
}

// Clock abstracts wall time for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SliceSummary is the per-slice duration row of a summary response.
// Durations maps machine state to asserted seconds inside the slice.
type SliceSummary struct {
	Label     string             `json:"label"`
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	Durations map[string]float64 `json:"durations"`
}

// StateSummary is the response for one machine over one window,
// sliced hourly (day view) or daily (week and month views), with an
// aggregate row covering the whole window.
type StateSummary struct {
	MachineName string         `json:"machine_name"`
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	Slices      []SliceSummary `json:"slices"`
	Aggregate   SliceSummary   `json:"aggregate"`
}

// Service computes machine state duration summaries.
type Service struct {
	source       SpanSource
	machines     MachineDirectory
	logger       *log.Logger
	clock        Clock
	queryTimeout time.Duration
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithClock overrides the wall clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if s != nil && clock != nil {
			s.clock = clock
		}
	}
}

// WithMachineDirectory enables machine existence checks; summaries for
// unknown machines then fail with masterdata.ErrUnknownMachine instead
// of returning all-zero durations.
func WithMachineDirectory(machines MachineDirectory) ServiceOption {
	return func(s *Service) {
		if s != nil {
			s.machines = machines
		}
	}
}

// WithQueryTimeout bounds one summary computation.
func WithQueryTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		if s != nil && timeout > 0 {
			s.queryTimeout = timeout
		}
	}
}

// NewService constructs a signals service.
func NewService(source SpanSource, logger *log.Logger, opts ...ServiceOption) (*Service, error) {
	if source == nil {
		return nil, errors.New("signals service: nil span source")
	}
	if logger == nil {
		logger = log.Default()
	}
	service := &Service{
		source:       source,
		logger:       logger,
		clock:        systemClock{},
		queryTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// DaySummary returns hourly state durations for one calendar day.
func (s *Service) DaySummary(ctx context.Context, machineName string, day time.Time) (*StateSummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	return s.summary(ctx, machineName, start, end, time.Hour)
}

// WeekSummary returns daily state durations for the seven days starting
// at weekStart.
func (s *Service) WeekSummary(ctx context.Context, machineName string, weekStart time.Time) (*StateSummary, error) {
	start := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	return s.summary(ctx, machineName, start, end, 24*time.Hour)
}

// MonthSummary returns daily state durations for one calendar month.
func (s *Service) MonthSummary(ctx context.Context, machineName string, year int, month time.Month) (*StateSummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return s.summary(ctx, machineName, start, end, 24*time.Hour)
}

func (s *Service) summary(ctx context.Context, machineName string, windowStart, windowEnd time.Time, sliceWidth time.Duration) (*StateSummary, error) {
	if machineName == "" {
		return nil, errors.New("signals service: empty machine name")
	}
	if !windowEnd.After(windowStart) {
		return nil, signals.ErrInvalidWindow
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if s.machines != nil {
		machine, err := s.machines.GetByName(ctx, machineName)
		if err != nil {
			return nil, err
		}
		if machine == nil {
			return nil, masterdata.ErrUnknownMachine
		}
	}

	started := s.clock.Now()
	result, err := s.compute(ctx, machineName, windowStart, windowEnd, sliceWidth)
	metrics.ObserveDurationQuery(err, s.clock.Now().Sub(started))
	return result, err
}

func (s *Service) compute(ctx context.Context, machineName string, windowStart, windowEnd time.Time, sliceWidth time.Duration) (*StateSummary, error) {
	now := s.clock.Now()

	spansByState := make(map[signals.MachineState][]signals.StateSpan)
	for _, state := range signals.AllMachineStates() {
		spans, err := s.source.SpansOverlapping(ctx, machineName, state, windowStart, windowEnd)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, signals.ErrTimeoutExceeded
			}
			return nil, err
		}
		spansByState[state] = spans
	}

	summary := &StateSummary{
		MachineName: machineName,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}

	for sliceStart := windowStart; sliceStart.Before(windowEnd); sliceStart = sliceStart.Add(sliceWidth) {
		sliceEnd := sliceStart.Add(sliceWidth)
		if sliceEnd.After(windowEnd) {
			sliceEnd = windowEnd
		}
		slice := SliceSummary{
			Label:     sliceLabel(sliceStart, sliceWidth),
			Start:     sliceStart,
			End:       sliceEnd,
			Durations: make(map[string]float64, len(spansByState)),
		}
		for state, spans := range spansByState {
			breakdown, _, err := signals.Accumulate(ctx, spans, sliceStart, sliceEnd, now)
			if err != nil {
				return nil, err
			}
			slice.Durations[string(state)] = breakdown.Total()
		}
		summary.Slices = append(summary.Slices, slice)
	}

	aggregate := SliceSummary{
		Label:     "total",
		Start:     windowStart,
		End:       windowEnd,
		Durations: make(map[string]float64, len(spansByState)),
	}
	for state, spans := range spansByState {
		breakdown, excluded, err := signals.Accumulate(ctx, spans, windowStart, windowEnd, now)
		if err != nil {
			return nil, err
		}
		s.reportExcluded(machineName, state, excluded)
		aggregate.Durations[string(state)] = breakdown.Total()
	}
	summary.Aggregate = aggregate
	return summary, nil
}

func (s *Service) reportExcluded(machineName string, state signals.MachineState, excluded []signals.StateSpan) {
	if len(excluded) == 0 {
		return
	}
	metrics.AddExcludedSpans(len(excluded))
	for _, span := range excluded {
		s.logger.Printf("%v: open span %s state=%s start=%s, a newer span already started",
			signals.ErrIncompleteSpanData, machineName, state, span.StartTime.Format(time.RFC3339))
	}
}

func sliceLabel(start time.Time, width time.Duration) string {
	if width < 24*time.Hour {
		return start.Format("15:04")
	}
	return start.Format("2006-01-02")
}
