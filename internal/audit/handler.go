package audit

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// Handler serves the limit change trail.
type Handler struct {
	repo *Repository
}

// NewHandler constructs a handler.
func NewHandler(repo *Repository) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("audit handler: nil repository")
	}
	return &Handler{repo: repo}, nil
}

type entryDTO struct {
	ID            string   `json:"id"`
	Actor         string   `json:"actor"`
	Role          string   `json:"role"`
	MachineName   string   `json:"machine_name"`
	ParameterName string   `json:"parameter_name"`
	SetType       string   `json:"set_type"`
	PreviousLimit *float64 `json:"previous_limit"`
	NewLimit      *float64 `json:"new_limit"`
	ChangedAt     int64    `json:"changed_at"`
}

// ServeHTTP handles GET /api/v1/audit?limit=N, newest first.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 || parsed > 1000 {
			http.Error(w, "limit must be between 1 and 1000", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := h.repo.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	payload := make([]entryDTO, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, entryDTO{
			ID:            entry.ID,
			Actor:         entry.Actor,
			Role:          entry.Role,
			MachineName:   entry.MachineName,
			ParameterName: entry.ParameterName,
			SetType:       string(entry.SetType),
			PreviousLimit: entry.PreviousLimit,
			NewLimit:      entry.NewLimit,
			ChangedAt:     entry.ChangedAt.UnixMilli(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
