package booking

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careslot/careslot/internal/platform/auth"
	"github.com/careslot/careslot/pkg/pagination"
)

type Handler struct {
	svc *AdmissionService
}

func NewHandler(svc *AdmissionService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts availability and booking endpoints.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/doctors/:id/availability", h.Availability)
	g.POST("/bookings", h.Create)
	g.GET("/bookings/:id", h.Get)
	g.PATCH("/bookings/:id/status", h.TransitionStatus)
	g.GET("/patients/:id/bookings", h.ListByPatient)
	g.GET("/doctors/:id/bookings", h.ListByDoctor, auth.RequireRole("doctor"))
}

type errorBody struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// respondError writes the typed error envelope. Callers cannot
// distinguish a race outcome from a logical conflict, and should not
// need to.
func respondError(c echo.Context, err error) error {
	kind := KindOf(err)
	msg := err.Error()
	if e, ok := err.(*Error); ok {
		msg = e.Message
	}
	return c.JSON(HTTPStatus(kind), map[string]errorBody{
		"error": {Kind: kind, Message: msg},
	})
}

// Availability returns the bookable slots for a doctor on one date.
// GET /doctors/:id/availability?date=2026-09-07
func (h *Handler) Availability(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, invalidInput("invalid doctor id"))
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return respondError(c, invalidInput("invalid date: expected YYYY-MM-DD"))
	}

	slots, err := h.svc.Availability(c.Request().Context(), doctorID, date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"doctor_id": doctorID,
		"date":      c.QueryParam("date"),
		"slots":     slots,
	})
}

type createRequest struct {
	PatientID       string  `json:"patient_id"`
	DoctorID        string  `json:"doctor_id"`
	SpecialtyID     *string `json:"specialty_id"`
	AppointmentTime string  `json:"appointment_time"`
	DurationMinutes int     `json:"duration_minutes"`
	Channel         string  `json:"channel"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidInput("invalid request body"))
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return respondError(c, invalidInput("invalid patient_id"))
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return respondError(c, invalidInput("invalid doctor_id"))
	}
	when, err := time.Parse(time.RFC3339, req.AppointmentTime)
	if err != nil {
		return respondError(c, invalidInput("invalid appointment_time: expected RFC 3339 UTC timestamp"))
	}
	var specialtyID *uuid.UUID
	if req.SpecialtyID != nil {
		id, err := uuid.Parse(*req.SpecialtyID)
		if err != nil {
			return respondError(c, invalidInput("invalid specialty_id"))
		}
		specialtyID = &id
	}

	b, err := h.svc.Admit(c.Request().Context(), AdmitRequest{
		PatientID:       patientID,
		DoctorID:        doctorID,
		SpecialtyID:     specialtyID,
		AppointmentTime: when,
		DurationMinutes: req.DurationMinutes,
		Channel:         req.Channel,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, invalidInput("invalid booking id"))
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) TransitionStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, invalidInput("invalid booking id"))
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidInput("invalid request body"))
	}

	requesterID := requesterFromContext(c)
	b, err := h.svc.TransitionStatus(c.Request().Context(), id, Status(req.Status), requesterID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// requesterFromContext resolves the authenticated caller for ownership
// checks. Admins act as privileged callers, reported as the nil UUID.
func requesterFromContext(c echo.Context) uuid.UUID {
	for _, role := range auth.RolesFromContext(c.Request().Context()) {
		if role == "admin" {
			return uuid.Nil
		}
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	id, err := uuid.Parse(userID)
	if err != nil {
		// A non-UUID subject can never own a booking.
		return uuid.New()
	}
	return id
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, invalidInput("invalid patient id"))
	}
	params := pagination.FromContext(c)
	bookings, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, params.Limit, params.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(bookings, total, params.Limit, params.Offset))
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, invalidInput("invalid doctor id"))
	}
	params := pagination.FromContext(c)
	bookings, total, err := h.svc.ListByDoctor(c.Request().Context(), doctorID, params.Limit, params.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(bookings, total, params.Limit, params.Offset))
}
