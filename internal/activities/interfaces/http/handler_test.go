package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"machinehealth-cloud/internal/activities/application"
	activities "machinehealth-cloud/internal/activities/domain"
	status "machinehealth-cloud/internal/status/domain"
)

type fakePendingStore struct{}

func (fakePendingStore) GetByParameterCondition(ctx context.Context, parameterID int64, condition status.Condition) (*activities.PendingActivity, error) {
	return nil, nil
}

func (fakePendingStore) Create(ctx context.Context, pending *activities.PendingActivity) error {
	return nil
}

func (fakePendingStore) Refresh(ctx context.Context, id string, latestOccurrence time.Time, recentValue float64) error {
	return nil
}

func (fakePendingStore) Update(ctx context.Context, pending *activities.PendingActivity) error {
	return nil
}

func (fakePendingStore) ListByParameterName(ctx context.Context, parameterName string) ([]activities.PendingActivity, error) {
	return nil, nil
}

type fakeCompleter struct{}

func (fakeCompleter) Complete(ctx context.Context, pendingID string, input activities.CompletionInput) (*activities.CompletedActivity, error) {
	return nil, nil
}

type fakePendingLister struct {
	items        []activities.PendingActivity
	listAllCalls int
	betweenStart time.Time
	betweenEnd   time.Time
	betweenCalls int
}

func (f *fakePendingLister) ListAll(ctx context.Context) ([]activities.PendingActivity, error) {
	f.listAllCalls++
	return f.items, nil
}

func (f *fakePendingLister) ListBetween(ctx context.Context, start, end time.Time) ([]activities.PendingActivity, error) {
	f.betweenCalls++
	f.betweenStart = start
	f.betweenEnd = end
	return f.items, nil
}

type fakeHistoryLister struct {
	items        []activities.CompletedActivity
	listAllCalls int
	betweenStart time.Time
	betweenEnd   time.Time
	betweenCalls int
}

func (f *fakeHistoryLister) ListAll(ctx context.Context) ([]activities.CompletedActivity, error) {
	f.listAllCalls++
	return f.items, nil
}

func (f *fakeHistoryLister) ListBetween(ctx context.Context, start, end time.Time) ([]activities.CompletedActivity, error) {
	f.betweenCalls++
	f.betweenStart = start
	f.betweenEnd = end
	return f.items, nil
}

func (f *fakeHistoryLister) AbnormalitySummary(ctx context.Context) (map[string]map[string]int, error) {
	return map[string]map[string]int{}, nil
}

func newListHandler(t *testing.T, pending *fakePendingLister, history *fakeHistoryLister) *Handler {
	t.Helper()
	tracker, err := application.NewTracker(fakePendingStore{}, fakeCompleter{})
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	handler, err := NewHandler(tracker, pending, history)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return handler
}

func TestListWindowedByIdentificationDate(t *testing.T) {
	identified := time.Date(2026, time.February, 10, 8, 30, 0, 0, time.UTC)
	pending := &fakePendingLister{items: []activities.PendingActivity{{
		ID:                   "act-1",
		ParameterName:        "Spindle Vibration",
		Condition:            status.ConditionCritical,
		DateOfIdentification: identified,
		LatestOccurrence:     identified,
		NumberOfOccurrences:  3,
		RecentValue:          92.5,
	}}}
	history := &fakeHistoryLister{}
	handler := newListHandler(t, pending, history)

	start := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	target := "/api/v1/activities?startTime=" + millisParam(start) + "&endTime=" + millisParam(end)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	if pending.betweenCalls != 1 || history.betweenCalls != 1 {
		t.Fatalf("ListBetween calls = (%d, %d), want (1, 1)", pending.betweenCalls, history.betweenCalls)
	}
	if pending.listAllCalls != 0 || history.listAllCalls != 0 {
		t.Fatalf("ListAll must not be called for a windowed request")
	}
	if !pending.betweenStart.Equal(start) || !pending.betweenEnd.Equal(end) {
		t.Fatalf("pending window = [%v, %v], want [%v, %v]", pending.betweenStart, pending.betweenEnd, start, end)
	}
	if !history.betweenStart.Equal(start) || !history.betweenEnd.Equal(end) {
		t.Fatalf("history window = [%v, %v], want [%v, %v]", history.betweenStart, history.betweenEnd, start, end)
	}
	if !strings.Contains(recorder.Body.String(), `"id":"act-1"`) {
		t.Fatalf("body missing windowed record: %s", recorder.Body.String())
	}
}

func TestListWithoutWindowReturnsFullHistory(t *testing.T) {
	pending := &fakePendingLister{}
	history := &fakeHistoryLister{}
	handler := newListHandler(t, pending, history)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/activities", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	if pending.listAllCalls != 1 || history.listAllCalls != 1 {
		t.Fatalf("ListAll calls = (%d, %d), want (1, 1)", pending.listAllCalls, history.listAllCalls)
	}
	if pending.betweenCalls != 0 || history.betweenCalls != 0 {
		t.Fatalf("ListBetween must not be called without bounds")
	}
}

func TestListRejectsMalformedWindow(t *testing.T) {
	cases := []struct {
		name   string
		target string
	}{
		{"start without end", "/api/v1/activities?startTime=1700000000000"},
		{"end without start", "/api/v1/activities?endTime=1700000000000"},
		{"non-numeric start", "/api/v1/activities?startTime=yesterday&endTime=1700000000000"},
		{"end before start", "/api/v1/activities?startTime=1700000000000&endTime=1600000000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pending := &fakePendingLister{}
			history := &fakeHistoryLister{}
			handler := newListHandler(t, pending, history)

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tc.target, nil))

			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
			}
			if pending.listAllCalls+pending.betweenCalls != 0 {
				t.Fatalf("no repository call expected for a bad window")
			}
		})
	}
}

func millisParam(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
