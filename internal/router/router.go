// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-inventory/internal/handler"
	"github.com/iliyamo/seat-inventory/internal/middleware"
	"github.com/iliyamo/seat-inventory/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the operator account routes.  Register and login
// live under /v1/auth and require no token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterReservations registers the seat mutation routes.  Every route
// requires a valid access token; reserve, bulk-reserve, cancel, transfer and
// retype accept both roles, while block, release and sweep are admin only.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1/services/:service")
	g.Use(middleware.JWTAuth(jwtSecret))

	staff := g.Group("", middleware.RequireRole(model.RoleAdmin, model.RoleOperator))
	staff.POST("/seats/:seat/reserve", r.Reserve)
	staff.POST("/bulk-reserve", r.BulkReserve)
	staff.POST("/seats/:seat/cancel", r.Cancel)
	staff.POST("/seats/:seat/transfer", r.Transfer)
	staff.POST("/seats/:seat/retype", r.Retype)

	admin := g.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/seats/:seat/block", r.Block)
	admin.POST("/seats/:seat/release", r.Release)
	admin.POST("/sweep", r.Sweep)
}

// RegisterReports registers the read-side routes.  The seat map is public so
// walk-up displays can render availability without a token; the aggregate
// reports and the audit tail require authentication.
func RegisterReports(e *echo.Echo, rp *handler.ReportHandler, jwtSecret string) {
	e.GET("/v1/services/:service/seats", rp.SeatMap)

	g := e.Group("/v1", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleOperator))
	g.GET("/services/:service/reports/occupancy", rp.Occupancy)
	g.GET("/services/:service/reports/revenue", rp.Revenue)
	g.GET("/services/:service/reports/search", rp.Search)
	g.GET("/reports/statistics", rp.Statistics)
	g.GET("/reports/audit", rp.AuditTail)
}
