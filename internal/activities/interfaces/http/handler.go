package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"machinehealth-cloud/internal/activities/application"
	activities "machinehealth-cloud/internal/activities/domain"
	"machinehealth-cloud/internal/activities/interfaces"
	"machinehealth-cloud/internal/observability/metrics"
)

// PendingLister reads the open activity board.
type PendingLister interface {
	ListAll(ctx context.Context) ([]activities.PendingActivity, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]activities.PendingActivity, error)
}

// HistoryLister reads the completed archive and condition tallies.
type HistoryLister interface {
	ListAll(ctx context.Context) ([]activities.CompletedActivity, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]activities.CompletedActivity, error)
	AbnormalitySummary(ctx context.Context) (map[string]map[string]int, error)
}

// Handler provides maintenance activity HTTP endpoints.
type Handler struct {
	tracker *application.Tracker
	pending PendingLister
	history HistoryLister
}

// NewHandler constructs a handler.
func NewHandler(tracker *application.Tracker, pending PendingLister, history HistoryLister) (*Handler, error) {
	if tracker == nil {
		return nil, errors.New("activities handler: nil tracker")
	}
	if pending == nil || history == nil {
		return nil, errors.New("activities handler: nil lister")
	}
	return &Handler{tracker: tracker, pending: pending, history: history}, nil
}

// ServeHTTP handles /api/v1/activities and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/activities":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPut:
			h.handleBatchUpdate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case r.URL.Path == "/api/v1/activities/export.xlsx",
		r.URL.Path == "/api/v1/activities/export.pdf":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleExport(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/activities/") && strings.HasSuffix(r.URL.Path, "/complete"):
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleComplete(w, r)
		return
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
}

type pendingDTO struct {
	ID                     string  `json:"id"`
	ParameterName          string  `json:"parameter_name"`
	Condition              string  `json:"condition"`
	DateOfIdentification   int64   `json:"date_of_identification"`
	LatestOccurrence       int64   `json:"latest_occurrence"`
	TargetDateOfCompletion *int64  `json:"target_date_of_completion"`
	NumberOfOccurrences    int     `json:"number_of_occurrences"`
	CorrectiveMeasurement  string  `json:"corrective_measurement"`
	SpareRequired          string  `json:"spare_required"`
	SupportNeeded          string  `json:"support_needed"`
	ResponsiblePerson      string  `json:"responsible_person"`
	Priority               string  `json:"priority"`
	RecentValue            float64 `json:"recent_value"`
}

type completedDTO struct {
	ID                     string  `json:"id"`
	ParameterName          string  `json:"parameter_name"`
	Condition              string  `json:"condition"`
	DateOfIdentification   int64   `json:"date_of_identification"`
	LatestOccurrence       int64   `json:"latest_occurrence"`
	TargetDateOfCompletion *int64  `json:"target_date_of_completion"`
	ActualDateOfCompletion int64   `json:"actual_date_of_completion"`
	NumberOfOccurrences    int     `json:"number_of_occurrences"`
	CorrectiveMeasurement  string  `json:"corrective_measurement"`
	SpareRequired          string  `json:"spare_required"`
	SupportNeeded          string  `json:"support_needed"`
	ResponsiblePerson      string  `json:"responsible_person"`
	Priority               string  `json:"priority"`
	RecentValue            float64 `json:"recent_value"`
}

type listResponse struct {
	Pending            []pendingDTO              `json:"pending"`
	Completed          []completedDTO            `json:"completed"`
	AbnormalitySummary map[string]map[string]int `json:"abnormality_summary"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start, end, windowed, err := parseListWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var pending []activities.PendingActivity
	var completed []activities.CompletedActivity
	if windowed {
		pending, err = h.pending.ListBetween(ctx, start, end)
	} else {
		pending, err = h.pending.ListAll(ctx)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if windowed {
		completed, err = h.history.ListBetween(ctx, start, end)
	} else {
		completed, err = h.history.ListAll(ctx)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	summary, err := h.history.AbnormalitySummary(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := listResponse{
		Pending:            make([]pendingDTO, 0, len(pending)),
		Completed:          make([]completedDTO, 0, len(completed)),
		AbnormalitySummary: summary,
	}
	for _, item := range pending {
		response.Pending = append(response.Pending, pendingDTO{
			ID:                     item.ID,
			ParameterName:          item.ParameterName,
			Condition:              string(item.Condition),
			DateOfIdentification:   item.DateOfIdentification.UnixMilli(),
			LatestOccurrence:       item.LatestOccurrence.UnixMilli(),
			TargetDateOfCompletion: optionalMillis(item.TargetDateOfCompletion),
			NumberOfOccurrences:    item.NumberOfOccurrences,
			CorrectiveMeasurement:  item.CorrectiveMeasurement,
			SpareRequired:          item.SpareRequired,
			SupportNeeded:          item.SupportNeeded,
			ResponsiblePerson:      item.ResponsiblePerson,
			Priority:               item.Priority,
			RecentValue:            item.RecentValue,
		})
	}
	for _, item := range completed {
		response.Completed = append(response.Completed, completedDTO{
			ID:                     item.ID,
			ParameterName:          item.ParameterName,
			Condition:              string(item.Condition),
			DateOfIdentification:   item.DateOfIdentification.UnixMilli(),
			LatestOccurrence:       item.LatestOccurrence.UnixMilli(),
			TargetDateOfCompletion: optionalMillis(item.TargetDateOfCompletion),
			ActualDateOfCompletion: item.ActualDateOfCompletion.UnixMilli(),
			NumberOfOccurrences:    item.NumberOfOccurrences,
			CorrectiveMeasurement:  item.CorrectiveMeasurement,
			SpareRequired:          item.SpareRequired,
			SupportNeeded:          item.SupportNeeded,
			ResponsiblePerson:      item.ResponsiblePerson,
			Priority:               item.Priority,
			RecentValue:            item.RecentValue,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

type updateRequest struct {
	ParameterName          string `json:"parameter_name"`
	Status                 string `json:"status"`
	CorrectiveMeasurement  string `json:"corrective_measurement"`
	SpareRequired          string `json:"spare_required"`
	SupportNeeded          string `json:"support_needed"`
	ResponsiblePerson      string `json:"responsible_person"`
	Priority               string `json:"priority"`
	TargetDateOfCompletion int64  `json:"target_date_of_completion"`
}

func (h *Handler) handleBatchUpdate(w http.ResponseWriter, r *http.Request) {
	var updates []updateRequest
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(updates) == 0 {
		http.Error(w, "no updates provided", http.StatusBadRequest)
		return
	}

	for _, update := range updates {
		err := h.tracker.Apply(r.Context(), application.ActivityUpdate{
			ParameterName:          update.ParameterName,
			Status:                 update.Status,
			CorrectiveMeasurement:  update.CorrectiveMeasurement,
			SpareRequired:          update.SpareRequired,
			SupportNeeded:          update.SupportNeeded,
			ResponsiblePerson:      update.ResponsiblePerson,
			Priority:               update.Priority,
			TargetDateOfCompletion: millisToTime(update.TargetDateOfCompletion),
		})
		if err != nil {
			if errors.Is(err, activities.ErrNotFound) {
				http.Error(w, "no pending activity for "+update.ParameterName, http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type completeRequest struct {
	CorrectiveMeasurement  string `json:"corrective_measurement"`
	SpareRequired          string `json:"spare_required"`
	SupportNeeded          string `json:"support_needed"`
	ResponsiblePerson      string `json:"responsible_person"`
	Priority               string `json:"priority"`
	TargetDateOfCompletion int64  `json:"target_date_of_completion"`
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/activities/")
	id = strings.TrimSuffix(id, "/complete")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "activity id is required", http.StatusBadRequest)
		return
	}

	var request completeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	completed, err := h.tracker.Complete(r.Context(), id, activities.CompletionInput{
		CorrectiveMeasurement:  request.CorrectiveMeasurement,
		SpareRequired:          request.SpareRequired,
		SupportNeeded:          request.SupportNeeded,
		ResponsiblePerson:      request.ResponsiblePerson,
		Priority:               request.Priority,
		TargetDateOfCompletion: millisToTime(request.TargetDateOfCompletion),
	})
	if err != nil {
		if errors.Is(err, activities.ErrNotFound) {
			http.Error(w, "activity not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(completedDTO{
		ID:                     completed.ID,
		ParameterName:          completed.ParameterName,
		Condition:              string(completed.Condition),
		DateOfIdentification:   completed.DateOfIdentification.UnixMilli(),
		LatestOccurrence:       completed.LatestOccurrence.UnixMilli(),
		TargetDateOfCompletion: optionalMillis(completed.TargetDateOfCompletion),
		ActualDateOfCompletion: completed.ActualDateOfCompletion.UnixMilli(),
		NumberOfOccurrences:    completed.NumberOfOccurrences,
		CorrectiveMeasurement:  completed.CorrectiveMeasurement,
		SpareRequired:          completed.SpareRequired,
		SupportNeeded:          completed.SupportNeeded,
		ResponsiblePerson:      completed.ResponsiblePerson,
		Priority:               completed.Priority,
		RecentValue:            completed.RecentValue,
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pending, err := h.pending.ListAll(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	completed, err := h.history.ListAll(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	if strings.HasSuffix(r.URL.Path, ".xlsx") {
		data, err := interfaces.BuildActivityXLSX(pending, completed, now)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		metrics.IncExport("xlsx")
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="activities.xlsx"`)
		_, _ = w.Write(data)
		return
	}

	data, err := interfaces.BuildActivityPDF(pending, completed, now)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.IncExport("pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="activities.pdf"`)
	_, _ = w.Write(data)
}

// parseListWindow reads the optional startTime/endTime epoch-ms query
// parameters bounding date_of_identification. Both absent means the
// full history; one without the other is an error.
func parseListWindow(r *http.Request) (start, end time.Time, windowed bool, err error) {
	startValue := r.URL.Query().Get("startTime")
	endValue := r.URL.Query().Get("endTime")
	if startValue == "" && endValue == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if startValue == "" || endValue == "" {
		return time.Time{}, time.Time{}, false, errors.New("startTime and endTime must be given together")
	}

	startMillis, err := strconv.ParseInt(startValue, 10, 64)
	if err != nil || startMillis < 0 {
		return time.Time{}, time.Time{}, false, errors.New("startTime must be epoch milliseconds")
	}
	endMillis, err := strconv.ParseInt(endValue, 10, 64)
	if err != nil || endMillis < 0 {
		return time.Time{}, time.Time{}, false, errors.New("endTime must be epoch milliseconds")
	}
	start = time.UnixMilli(startMillis).UTC()
	end = time.UnixMilli(endMillis).UTC()
	if end.Before(start) {
		return time.Time{}, time.Time{}, false, errors.New("endTime must not be before startTime")
	}
	return start, end, true, nil
}

func optionalMillis(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func millisToTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
