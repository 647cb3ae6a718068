package schedule

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careslot/careslot/internal/domain/doctor"
	"github.com/careslot/careslot/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts schedule management endpoints. Reads are public so
// patients can inspect a doctor's recurring hours; writes require the
// doctor or admin role.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/doctors/:id/windows", h.ListWindows)
	g.GET("/doctors/:id/blocked-dates", h.ListBlockedDates)

	staff := auth.RequireRole("doctor")
	g.POST("/doctors/:id/windows", h.CreateWindow, staff)
	g.PUT("/doctors/:id/windows", h.ReplaceWindows, staff)
	g.PUT("/windows/:id", h.UpdateWindow, staff)
	g.DELETE("/windows/:id", h.DeleteWindow, staff)
	g.POST("/doctors/:id/blocked-dates", h.BlockDate, staff)
	g.DELETE("/blocked-dates/:id", h.UnblockDate, staff)
}

type windowRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (h *Handler) CreateWindow(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	var req windowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	w := &WeeklyWindow{
		DoctorID:  doctorID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := h.svc.CreateWindow(c.Request().Context(), w); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, w)
}

type replaceWindowsRequest struct {
	Windows []windowRequest `json:"windows"`
}

// ReplaceWindows swaps the doctor's entire weekly schedule atomically.
func (h *Handler) ReplaceWindows(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	var req replaceWindowsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	windows := make([]*WeeklyWindow, 0, len(req.Windows))
	for _, w := range req.Windows {
		windows = append(windows, &WeeklyWindow{
			DoctorID:  doctorID,
			DayOfWeek: w.DayOfWeek,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}
	if err := h.svc.ReplaceWindows(c.Request().Context(), doctorID, windows); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"windows": windows})
}

func (h *Handler) ListWindows(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	windows, err := h.svc.ListWindows(c.Request().Context(), doctorID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"windows": windows})
}

func (h *Handler) UpdateWindow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid window id")
	}
	var req windowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	w, err := h.svc.UpdateWindow(c.Request().Context(), id, req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) DeleteWindow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid window id")
	}
	if err := h.svc.DeleteWindow(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type blockDateRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

func (h *Handler) BlockDate(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	var req blockDateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date: expected YYYY-MM-DD")
	}
	b := &BlockedDate{DoctorID: doctorID, Date: date, Reason: req.Reason}
	if err := h.svc.BlockDate(c.Request().Context(), b); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) UnblockDate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid blocked date id")
	}
	if err := h.svc.UnblockDate(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListBlockedDates(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	blocked, err := h.svc.ListBlockedDates(c.Request().Context(), doctorID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"blocked_dates": blocked})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, doctor.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateBlockedDate):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
