package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	statusapp "machinehealth-cloud/internal/status/application"
	telemetry "machinehealth-cloud/internal/telemetry/domain"
)

type stubSnapshotSource struct {
	rows []telemetry.SnapshotRow
}

func (s *stubSnapshotSource) LatestSnapshot(_ context.Context, groupName string) ([]telemetry.SnapshotRow, error) {
	if groupName == "" {
		return s.rows, nil
	}
	var filtered []telemetry.SnapshotRow
	for _, row := range s.rows {
		if row.GroupName == groupName {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

func value(v float64) *float64 { return &v }

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	now := time.Now().UTC()
	source := &stubSnapshotSource{rows: []telemetry.SnapshotRow{
		{
			GroupName: "press-shop", LineName: "L1", MachineName: "M1",
			MachineParameterID: 1, ParameterName: "spindle_temp", ParameterType: "increasing",
			WarningLimit: value(70), CriticalLimit: value(90), Value: value(95), UpdatedAt: now,
		},
		{
			GroupName: "assembly", LineName: "L1", MachineName: "M4",
			MachineParameterID: 2, ParameterName: "vibration", ParameterType: "increasing",
			WarningLimit: value(4), CriticalLimit: value(8), Value: value(1), UpdatedAt: now,
		},
	}}
	service, err := statusapp.NewService(source, log.New(os.Stderr, "", 0))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func TestOverviewEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		GroupNames []struct {
			ItemName  string `json:"item_name"`
			ItemState string `json:"item_state"`
		} `json:"group_names"`
		AllGroupDetails []json.RawMessage `json:"all_group_details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.GroupNames) != 2 || len(payload.AllGroupDetails) != 2 {
		t.Fatalf("expected two groups, got %d/%d", len(payload.GroupNames), len(payload.AllGroupDetails))
	}
	// Groups come out alphabetical; press-shop carries the limit breach.
	if payload.GroupNames[0].ItemName != "assembly" || payload.GroupNames[0].ItemState != "OK" {
		t.Fatalf("unexpected first group %+v", payload.GroupNames[0])
	}
	if payload.GroupNames[1].ItemName != "press-shop" || payload.GroupNames[1].ItemState != "CRITICAL" {
		t.Fatalf("unexpected second group %+v", payload.GroupNames[1])
	}
}

func TestGroupEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status/groups/press-shop", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, key := range []string{`"group_name":"press-shop"`, `"group_state":"CRITICAL"`, `"line_name":"L1"`} {
		if !strings.Contains(body, key) {
			t.Fatalf("response missing %s: %s", key, body)
		}
	}
}

func TestGroupEndpointUnknownGroup(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status/groups/no-such-group", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStatusEndpointsRejectWrites(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/status", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
