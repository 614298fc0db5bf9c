package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	masterdata "machinehealth-cloud/internal/masterdata/domain"
	signalapp "machinehealth-cloud/internal/signals/application"
	signals "machinehealth-cloud/internal/signals/domain"
)

const dateLayout = "2006-01-02"

// Handler provides machine state summary HTTP endpoints.
type Handler struct {
	service *signalapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *signalapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("signals handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles /api/v1/machine-states/{machine}/{window}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/machine-states/")
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, "expected /api/v1/machine-states/{machine}/{day|week|month}", http.StatusBadRequest)
		return
	}
	machineName, window := parts[0], parts[1]

	var summary *signalapp.StateSummary
	var err error
	switch window {
	case "day":
		day, parseErr := parseDateQuery(r, "date")
		if parseErr != nil {
			http.Error(w, parseErr.Error(), http.StatusBadRequest)
			return
		}
		summary, err = h.service.DaySummary(r.Context(), machineName, day)
	case "week":
		start, parseErr := parseDateQuery(r, "start")
		if parseErr != nil {
			http.Error(w, parseErr.Error(), http.StatusBadRequest)
			return
		}
		summary, err = h.service.WeekSummary(r.Context(), machineName, start)
	case "month":
		month, parseErr := parseMonthQuery(r)
		if parseErr != nil {
			http.Error(w, parseErr.Error(), http.StatusBadRequest)
			return
		}
		summary, err = h.service.MonthSummary(r.Context(), machineName, month.Year(), month.Month())
	default:
		http.Error(w, "unknown window, expected day, week or month", http.StatusBadRequest)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, signals.ErrTimeoutExceeded):
			http.Error(w, "state duration query timed out", http.StatusGatewayTimeout)
		case errors.Is(err, signals.ErrInvalidWindow):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, masterdata.ErrUnknownMachine):
			http.Error(w, "machine not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, errors.New(key + " is required (YYYY-MM-DD)")
	}
	parsed, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, errors.New(key + " must be YYYY-MM-DD")
	}
	return parsed, nil
}

func parseMonthQuery(r *http.Request) (time.Time, error) {
	value := r.URL.Query().Get("month")
	if value == "" {
		return time.Time{}, errors.New("month is required (YYYY-MM)")
	}
	parsed, err := time.ParseInLocation("2006-01", value, time.UTC)
	if err != nil {
		return time.Time{}, errors.New("month must be YYYY-MM")
	}
	return parsed, nil
}
