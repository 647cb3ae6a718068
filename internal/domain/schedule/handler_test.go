package schedule

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler(doctorIDs ...uuid.UUID) (*Handler, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo, newMockDoctorRepo(doctorIDs...))
	return NewHandler(svc), repo
}

func TestCreateWindowHandler(t *testing.T) {
	doctorID := uuid.New()
	h, _ := newTestHandler(doctorID)
	e := echo.New()

	body := `{"day_of_week": 1, "start_time": "09:00", "end_time": "17:00"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(doctorID.String())

	if err := h.CreateWindow(c); err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var w WeeklyWindow
	if err := json.Unmarshal(rec.Body.Bytes(), &w); err != nil {
		t.Fatal(err)
	}
	if w.DoctorID != doctorID || w.StartTime != "09:00" {
		t.Errorf("unexpected window: %+v", w)
	}
}

func TestCreateWindowHandlerInvalidRange(t *testing.T) {
	doctorID := uuid.New()
	h, _ := newTestHandler(doctorID)
	e := echo.New()

	body := `{"day_of_week": 1, "start_time": "17:00", "end_time": "09:00"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(doctorID.String())

	err := h.CreateWindow(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestCreateWindowHandlerUnknownDoctor(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()

	body := `{"day_of_week": 1, "start_time": "09:00", "end_time": "17:00"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.CreateWindow(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestBlockDateHandlerConflict(t *testing.T) {
	doctorID := uuid.New()
	h, _ := newTestHandler(doctorID)
	e := echo.New()

	do := func() error {
		body := `{"date": "2026-09-10", "reason": "conference"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(doctorID.String())
		return h.BlockDate(c)
	}

	if err := do(); err != nil {
		t.Fatalf("first block: %v", err)
	}
	err := do()
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409 on duplicate, got %v", err)
	}
}

func TestBlockDateHandlerBadDate(t *testing.T) {
	doctorID := uuid.New()
	h, _ := newTestHandler(doctorID)
	e := echo.New()

	body := `{"date": "10/09/2026"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(doctorID.String())

	err := h.BlockDate(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestDeleteWindowHandler(t *testing.T) {
	doctorID := uuid.New()
	h, repo := newTestHandler(doctorID)
	e := echo.New()

	w := &WeeklyWindow{ID: uuid.New(), DoctorID: doctorID, DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"}
	repo.windows[w.ID] = w

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(w.ID.String())

	if err := h.DeleteWindow(c); err != nil {
		t.Fatalf("DeleteWindow: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if len(repo.windows) != 0 {
		t.Error("window not deleted")
	}
}
