package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	telemetry "machinehealth-cloud/internal/telemetry/domain"
)

// ReadingSource fetches raw samples for one parameter, oldest first.
type ReadingSource interface {
	ReadingsBetween(ctx context.Context, machineParameterID int64, start, end time.Time) ([]telemetry.ParameterReading, error)
}

// Handler serves raw reading history.
type Handler struct {
	source ReadingSource
}

// NewHandler constructs a handler.
func NewHandler(source ReadingSource) (*Handler, error) {
	if source == nil {
		return nil, errors.New("telemetry handler: nil reading source")
	}
	return &Handler{source: source}, nil
}

type readingDTO struct {
	MachineName   string   `json:"machine_name"`
	ParameterName string   `json:"parameter_name"`
	Value         *float64 `json:"value"`
	RecordedAt    int64    `json:"recorded_at"`
}

// ServeHTTP handles GET /api/v1/readings/{parameterID}?start=...&end=...
// with RFC 3339 bounds, end exclusive.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1/readings/"), "/")
	parameterID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || parameterID <= 0 {
		http.Error(w, "expected /api/v1/readings/{parameterID}", http.StatusBadRequest)
		return
	}

	start, err := parseTimeQuery(r, "start")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	end, err := parseTimeQuery(r, "end")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !end.After(start) {
		http.Error(w, "end must be after start", http.StatusBadRequest)
		return
	}

	readings, err := h.source.ReadingsBetween(r.Context(), parameterID, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	payload := make([]readingDTO, 0, len(readings))
	for _, reading := range readings {
		payload = append(payload, readingDTO{
			MachineName:   reading.MachineName,
			ParameterName: reading.ParameterName,
			Value:         reading.Value,
			RecordedAt:    reading.RecordedAt.UnixMilli(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, errors.New(key + " is required (RFC 3339)")
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New(key + " must be RFC 3339")
	}
	return parsed.UTC(), nil
}
