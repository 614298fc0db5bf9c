package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"machinehealth-cloud/internal/auth"
	"machinehealth-cloud/internal/masterdata/application"
	masterdata "machinehealth-cloud/internal/masterdata/domain"
)

// Handler provides master data HTTP endpoints.
type Handler struct {
	service *application.ParameterService
}

// NewHandler constructs a handler.
func NewHandler(service *application.ParameterService) (*Handler, error) {
	if service == nil {
		return nil, errors.New("masterdata handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles /api/v1/machines and /api/v1/parameters subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/machines":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleListMachines(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/machines/") && strings.HasSuffix(r.URL.Path, "/parameters"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleMachineParameters(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/parameters/") && strings.HasSuffix(r.URL.Path, "/limits"):
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleUpdateLimits(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/parameters/"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleGetParameter(w, r)
		return
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
}

type machineDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	GroupName     string `json:"group_name"`
	LineName      string `json:"line_name"`
	MachineNumber string `json:"machine_number"`
	ShortName     string `json:"short_name"`
	Description   string `json:"description"`
}

func (h *Handler) handleListMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := h.service.ListMachines(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	list := make([]machineDTO, 0, len(machines))
	for _, machine := range machines {
		list = append(list, machineDTO{
			ID:            machine.ID,
			Name:          machine.Name,
			GroupName:     machine.GroupName,
			LineName:      machine.LineName,
			MachineNumber: machine.MachineNumber,
			ShortName:     machine.ShortName,
			Description:   machine.Description,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

type parameterDTO struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	DisplayName   string   `json:"display_name"`
	InternalName  string   `json:"internal_name"`
	MachineID     int64    `json:"machine_id"`
	ParameterType string   `json:"parameter_type"`
	WarningLimit  *float64 `json:"warning_limit"`
	CriticalLimit *float64 `json:"critical_limit"`
}

func toParameterDTO(parameter masterdata.MachineParameter) parameterDTO {
	return parameterDTO{
		ID:            parameter.ID,
		Name:          parameter.Name,
		DisplayName:   parameter.DisplayName,
		InternalName:  parameter.InternalName,
		MachineID:     parameter.MachineID,
		ParameterType: string(parameter.ParameterType),
		WarningLimit:  parameter.WarningLimit,
		CriticalLimit: parameter.CriticalLimit,
	}
}

func (h *Handler) handleMachineParameters(w http.ResponseWriter, r *http.Request) {
	idPart := strings.TrimPrefix(r.URL.Path, "/api/v1/machines/")
	idPart = strings.TrimSuffix(idPart, "/parameters")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid machine id", http.StatusBadRequest)
		return
	}

	parameters, err := h.service.MachineParameters(r.Context(), id)
	if err != nil {
		if errors.Is(err, masterdata.ErrUnknownMachine) {
			http.Error(w, "machine not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	list := make([]parameterDTO, 0, len(parameters))
	for _, parameter := range parameters {
		list = append(list, toParameterDTO(parameter))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) handleGetParameter(w http.ResponseWriter, r *http.Request) {
	idPart := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1/parameters/"), "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid parameter id", http.StatusBadRequest)
		return
	}

	parameter, err := h.service.GetParameter(r.Context(), id)
	if err != nil {
		if errors.Is(err, masterdata.ErrUnknownParameter) {
			http.Error(w, "parameter not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toParameterDTO(*parameter))
}

type limitsRequest struct {
	WarningLimit  *float64 `json:"warning_limit"`
	CriticalLimit *float64 `json:"critical_limit"`
}

func (h *Handler) handleUpdateLimits(w http.ResponseWriter, r *http.Request) {
	idPart := strings.TrimPrefix(r.URL.Path, "/api/v1/parameters/")
	idPart = strings.TrimSuffix(idPart, "/limits")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid parameter id", http.StatusBadRequest)
		return
	}

	var request limitsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	update := application.LimitUpdate{
		ParameterID:   id,
		WarningLimit:  request.WarningLimit,
		CriticalLimit: request.CriticalLimit,
		Actor:         auth.SubjectFromContext(r.Context()),
		Role:          string(auth.RoleFromContext(r.Context())),
		IP:            r.RemoteAddr,
		UserAgent:     r.UserAgent(),
	}
	if err := h.service.UpdateLimits(r.Context(), update); err != nil {
		switch {
		case errors.Is(err, masterdata.ErrInvalidLimitOrdering):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, masterdata.ErrUnknownParameter):
			http.Error(w, "parameter not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
