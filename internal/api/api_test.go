package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BTreeMap/LeadFunnel/internal/models"
	"github.com/BTreeMap/LeadFunnel/internal/store"
)

type failingArchive struct{}

func (failingArchive) AddLead(models.Lead) error         { return nil }
func (failingArchive) ListLeads() ([]models.Lead, error) { return nil, errors.New("db down") }
func (failingArchive) Close() error                      { return nil }

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHealthHandler(t *testing.T) {
	s := NewServer(store.NewInMemoryStore())

	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Status != "ok" {
		t.Errorf("expected ok status, got %q", resp.Status)
	}
}

func TestHealthHandlerRejectsPost(t *testing.T) {
	s := NewServer(store.NewInMemoryStore())

	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestLeadsHandlerReturnsArchivedLeads(t *testing.T) {
	archive := store.NewInMemoryStore()
	archive.AddLead(models.Lead{
		ID:             "lead-1",
		ConversationID: "905551112233",
		Goal:           models.GoalWeightLoss,
		TimeSlot:       models.TimeSlotMorning,
		Contact:        models.ContactRecord{Phone: "0555 123 45 67"},
		CapturedAt:     time.Now(),
	})
	s := NewServer(archive)

	rec := httptest.NewRecorder()
	s.leadsHandler(rec, httptest.NewRequest(http.MethodGet, "/leads", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	leads, ok := resp.Result.([]interface{})
	if !ok || len(leads) != 1 {
		t.Errorf("expected one lead in result, got %#v", resp.Result)
	}
}

func TestLeadsHandlerEmptyArchiveReturnsEmptyList(t *testing.T) {
	s := NewServer(store.NewInMemoryStore())

	rec := httptest.NewRecorder()
	s.leadsHandler(rec, httptest.NewRequest(http.MethodGet, "/leads", nil))

	resp := decodeResponse(t, rec)
	if leads, ok := resp.Result.([]interface{}); !ok || len(leads) != 0 {
		t.Errorf("expected empty list, got %#v", resp.Result)
	}
}

func TestLeadsHandlerArchiveFailure(t *testing.T) {
	s := NewServer(failingArchive{})

	rec := httptest.NewRecorder()
	s.leadsHandler(rec, httptest.NewRequest(http.MethodGet, "/leads", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Status != "error" {
		t.Errorf("expected error status, got %q", resp.Status)
	}
}
