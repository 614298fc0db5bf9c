package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	statusapp "machinehealth-cloud/internal/status/application"
	status "machinehealth-cloud/internal/status/domain"
)

// Handler provides status rollup HTTP endpoints.
type Handler struct {
	service *statusapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *statusapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("status handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles /api/v1/status and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch {
	case r.URL.Path == "/api/v1/status":
		h.handleOverview(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/status/groups/"):
		h.handleGroup(w, r)
		return
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(overview)
}

func (h *Handler) handleGroup(w http.ResponseWriter, r *http.Request) {
	groupName := strings.TrimPrefix(r.URL.Path, "/api/v1/status/groups/")
	groupName = strings.TrimSuffix(groupName, "/")
	if groupName == "" || strings.Contains(groupName, "/") {
		http.Error(w, "group name is required", http.StatusBadRequest)
		return
	}

	group, err := h.service.Group(r.Context(), groupName)
	if err != nil {
		if errors.Is(err, status.ErrUnknownGroup) {
			http.Error(w, "group not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(group)
}
