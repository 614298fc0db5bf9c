package application

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	signals "machinehealth-cloud/internal/signals/domain"
)

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

type stubSpanSource struct {
	spans map[signals.MachineState][]signals.StateSpan
	err   error
}

func (s *stubSpanSource) SpansOverlapping(_ context.Context, _ string, state signals.MachineState, _, _ time.Time) ([]signals.StateSpan, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.spans[state], nil
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func closedSpan(state signals.MachineState, start, end time.Time) signals.StateSpan {
	return signals.StateSpan{
		SignalID:        "sig-" + string(state),
		MachineName:     "M1",
		State:           state,
		StartTime:       start,
		EndTime:         end,
		Asserted:        true,
		DurationSeconds: end.Sub(start).Seconds(),
	}
}

func TestDaySummarySlicesAndAggregate(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	source := &stubSpanSource{spans: map[signals.MachineState][]signals.StateSpan{
		signals.StateOperate: {
			closedSpan(signals.StateOperate, day.Add(8*time.Hour), day.Add(16*time.Hour)),
		},
		signals.StateAlarm: {
			closedSpan(signals.StateAlarm, day.Add(9*time.Hour+30*time.Minute), day.Add(10*time.Hour)),
		},
	}}

	service, err := NewService(source, testLogger(), WithClock(stubClock{now: day.Add(48 * time.Hour)}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := service.DaySummary(context.Background(), "M1", day)
	if err != nil {
		t.Fatalf("day summary: %v", err)
	}
	if len(summary.Slices) != 24 {
		t.Fatalf("expected 24 hourly slices, got %d", len(summary.Slices))
	}

	hour9 := summary.Slices[9]
	if hour9.Durations[string(signals.StateAlarm)] != 1800 {
		t.Fatalf("expected 1800s ALARM in hour 9, got %v", hour9.Durations[string(signals.StateAlarm)])
	}
	if hour9.Durations[string(signals.StateOperate)] != 3600 {
		t.Fatalf("expected 3600s OPERATE in hour 9, got %v", hour9.Durations[string(signals.StateOperate)])
	}

	if summary.Aggregate.Durations[string(signals.StateOperate)] != 8*3600 {
		t.Fatalf("expected 8h OPERATE aggregate, got %v", summary.Aggregate.Durations[string(signals.StateOperate)])
	}
	if summary.Aggregate.Durations[string(signals.StateAlarm)] != 1800 {
		t.Fatalf("expected 1800s ALARM aggregate, got %v", summary.Aggregate.Durations[string(signals.StateAlarm)])
	}

	var operateSum float64
	for _, slice := range summary.Slices {
		operateSum += slice.Durations[string(signals.StateOperate)]
	}
	if operateSum != summary.Aggregate.Durations[string(signals.StateOperate)] {
		t.Fatalf("hourly slices sum to %v, aggregate is %v", operateSum, summary.Aggregate.Durations[string(signals.StateOperate)])
	}
}

func TestMonthSummaryDailySlices(t *testing.T) {
	source := &stubSpanSource{spans: map[signals.MachineState][]signals.StateSpan{}}
	service, err := NewService(source, testLogger(),
		WithClock(stubClock{now: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := service.MonthSummary(context.Background(), "M1", 2026, time.August)
	if err != nil {
		t.Fatalf("month summary: %v", err)
	}
	if len(summary.Slices) != 31 {
		t.Fatalf("expected 31 daily slices for August, got %d", len(summary.Slices))
	}
	if summary.Slices[0].Label != "2026-08-01" {
		t.Fatalf("expected date label for daily slice, got %q", summary.Slices[0].Label)
	}
}

func TestMonthSummaryIgnoresSupersededOpenSpan(t *testing.T) {
	// An ALARM span opened in January and never closed; the span that
	// followed it ended in February, outside the March window, so the
	// source returns only the stale open span with the superseded flag.
	stale := signals.StateSpan{
		SignalID:    "sig-ALARM",
		MachineName: "M1",
		State:       signals.StateAlarm,
		StartTime:   time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Asserted:    true,
		Superseded:  true,
	}
	source := &stubSpanSource{spans: map[signals.MachineState][]signals.StateSpan{
		signals.StateAlarm: {stale},
	}}
	service, err := NewService(source, testLogger(),
		WithClock(stubClock{now: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := service.MonthSummary(context.Background(), "M1", 2026, time.March)
	if err != nil {
		t.Fatalf("month summary: %v", err)
	}
	if got := summary.Aggregate.Durations[string(signals.StateAlarm)]; got != 0 {
		t.Fatalf("stale open span must not count, got %v seconds of ALARM", got)
	}
	for _, slice := range summary.Slices {
		if slice.Durations[string(signals.StateAlarm)] != 0 {
			t.Fatalf("slice %s counted the stale span", slice.Label)
		}
	}
}

func TestWeekSummaryWindow(t *testing.T) {
	source := &stubSpanSource{spans: map[signals.MachineState][]signals.StateSpan{}}
	service, err := NewService(source, testLogger(),
		WithClock(stubClock{now: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	summary, err := service.WeekSummary(context.Background(), "M1", start)
	if err != nil {
		t.Fatalf("week summary: %v", err)
	}
	if len(summary.Slices) != 7 {
		t.Fatalf("expected 7 daily slices, got %d", len(summary.Slices))
	}
	if !summary.WindowEnd.Equal(start.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected window end %s", summary.WindowEnd)
	}
}

func TestSummaryRequiresMachineName(t *testing.T) {
	source := &stubSpanSource{}
	service, err := NewService(source, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := service.DaySummary(context.Background(), "", time.Now()); err == nil {
		t.Fatal("expected error for empty machine name")
	}
}
