package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-inventory/internal/audit"
	"github.com/iliyamo/seat-inventory/internal/model"
	"github.com/iliyamo/seat-inventory/internal/report"
)

// ReportHandler serves the read side: seat maps, occupancy, revenue, booking
// search and the audit tail.  Nothing here mutates state.
type ReportHandler struct {
	Reports *report.Engine
	Audit   audit.Log
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(r *report.Engine, a audit.Log) *ReportHandler {
	return &ReportHandler{Reports: r, Audit: a}
}

// SeatMap handles GET /v1/services/:service/seats: the seat grid row by row
// with each seat's status, for rendering availability.
func (h *ReportHandler) SeatMap(c echo.Context) error {
	svc, err := model.ParseService(c.Param("service"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	grid, err := h.Reports.SeatMap(c.Request().Context(), svc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"service": svc.Name(), "rows": grid})
}

// Occupancy handles GET /v1/services/:service/reports/occupancy.
func (h *ReportHandler) Occupancy(c echo.Context) error {
	svc, err := model.ParseService(c.Param("service"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	occ, err := h.Reports.Occupancy(c.Request().Context(), svc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, occ)
}

// Revenue handles GET /v1/services/:service/reports/revenue.
func (h *ReportHandler) Revenue(c echo.Context) error {
	svc, err := model.ParseService(c.Param("service"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	rev, err := h.Reports.Revenue(c.Request().Context(), svc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rev)
}

// Search handles GET /v1/services/:service/reports/search?q=...: bookings by
// occupant name substring or exact seat ID.
func (h *ReportHandler) Search(c echo.Context) error {
	svc, err := model.ParseService(c.Param("service"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	matches, err := h.Reports.Search(c.Request().Context(), svc, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"matches": matches})
}

// Statistics handles GET /v1/reports/statistics: bookings and revenue per
// service.
func (h *ReportHandler) Statistics(c echo.Context) error {
	stats, err := h.Reports.Statistics(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"services": stats})
}

// AuditTail handles GET /v1/reports/audit?n=50: the last n audit records in
// append order.
func (h *ReportHandler) AuditTail(c echo.Context) error {
	n := 50
	if raw := c.QueryParam("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid n"})
		}
		n = parsed
	}
	recs, err := h.Audit.Recent(c.Request().Context(), n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"records": recs})
}
