package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-inventory/internal/engine"
	"github.com/iliyamo/seat-inventory/internal/identity"
	"github.com/iliyamo/seat-inventory/internal/model"
	"github.com/iliyamo/seat-inventory/internal/ticket"
)

// ReservationHandler exposes the reservation engine's mutating operations.
// JWT authentication and role checks run in middleware; handlers translate
// request bodies into engine calls and engine errors into status codes.
type ReservationHandler struct {
	Engine *engine.Engine
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(e *engine.Engine) *ReservationHandler {
	if e == nil {
		panic("nil engine passed to NewReservationHandler")
	}
	return &ReservationHandler{Engine: e}
}

// identityReq carries the raw identity fields of a reservation request.
type identityReq struct {
	FirstName     string `json:"first_name"`
	MiddleInitial string `json:"middle_initial"`
	Surname       string `json:"surname"`
	IDType        string `json:"id_type"`
	IDNumber      string `json:"id_number"`
	Contact       string `json:"contact"`
	Street        string `json:"street"`
	Barangay      string `json:"barangay"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
}

func (r identityReq) input() identity.Input {
	return identity.Input{
		FirstName:     r.FirstName,
		MiddleInitial: r.MiddleInitial,
		Surname:       r.Surname,
		IDType:        r.IDType,
		IDNumber:      r.IDNumber,
		Contact:       r.Contact,
		Street:        r.Street,
		Barangay:      r.Barangay,
		City:          r.City,
		Province:      r.Province,
		PostalCode:    r.PostalCode,
	}
}

// seatResp is the JSON view of a booked seat.  The occupant's ID number is
// deliberately absent.
type seatResp struct {
	Seat       model.SeatID `json:"seat"`
	Status     string       `json:"status"`
	Name       string       `json:"name"`
	TicketType string       `json:"ticket_type"`
	BasePrice  string       `json:"base_price"`
	FinalPrice string       `json:"final_price"`
	BookedAt   string       `json:"booked_at"`
}

func seatView(s model.Seat) seatResp {
	resp := seatResp{
		Seat:       s.ID,
		Status:     string(s.Status),
		TicketType: s.TicketType,
		BasePrice:  ticket.FormatAmount(s.BasePrice),
		FinalPrice: ticket.FormatAmount(s.FinalPrice),
		BookedAt:   s.BookedAt.Format("2006-01-02 15:04:05"),
	}
	if s.Occupant != nil {
		resp.Name = s.Occupant.DisplayName()
	}
	return resp
}

// engineError maps the engine's error taxonomy onto HTTP status codes.
func engineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrStateConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrValidation):
		body := echo.Map{"error": err.Error()}
		var fe *identity.FieldError
		if errors.As(err, &fe) {
			body["field"] = fe.Field
		}
		return c.JSON(http.StatusUnprocessableEntity, body)
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage failure"})
	}
}

func serviceParam(c echo.Context) (model.Service, error) {
	return model.ParseService(c.Param("service"))
}

// Reserve handles POST /v1/services/:service/seats/:seat/reserve.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	svc, err := serviceParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	var body struct {
		identityReq
		TicketType string `json:"ticket_type"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	seat, err := h.Engine.Reserve(c.Request().Context(), svc, c.Param("seat"), body.input(), body.TicketType)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, seatView(seat))
}

// BulkReserve handles POST /v1/services/:service/bulk-reserve.  The whole
// batch commits or none of it does; the first conflicting seat is reported.
func (h *ReservationHandler) BulkReserve(c echo.Context) error {
	svc, err := serviceParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	var body struct {
		Seats []struct {
			Seat string `json:"seat"`
			identityReq
			TicketType string `json:"ticket_type"`
		} `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	items := make([]engine.BulkItem, 0, len(body.Seats))
	for _, s := range body.Seats {
		items = append(items, engine.BulkItem{
			Seat:       s.Seat,
			Identity:   s.input(),
			TicketType: s.TicketType,
		})
	}
	booked, err := h.Engine.BulkReserve(c.Request().Context(), svc, items)
	if err != nil {
		return engineError(c, err)
	}
	out := make([]seatResp, 0, len(booked))
	for _, s := range booked {
		out = append(out, seatView(s))
	}
	return c.JSON(http.StatusCreated, echo.Map{"booked": out})
}

// Cancel handles POST /v1/services/:service/seats/:seat/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	svc, err := serviceParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	if err := h.Engine.Cancel(c.Request().Context(), svc, c.Param("seat")); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Transfer handles POST /v1/services/:service/seats/:seat/transfer with a
// JSON body naming the target seat.
func (h *ReservationHandler) Transfer(c echo.Context) error {
	svc, err := serviceParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	var body struct {
		To string `json:"to"`
	}
	if err := c.Bind(&body); err != nil || body.To == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target seat required"})
	}
	seat, err := h.Engine.Transfer(c.Request().Context(), svc, c.Param("seat"), body.To)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, seatView(seat))
}

// Retype handles POST /v1/services/:service/seats/:seat/retype.
func (h *ReservationHandler) Retype(c echo.Context) error {
	svc, err := serviceParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	var body struct {
		TicketType string `json:"ticket_type"`
	}
	if err := c.Bind(&body); err != nil || body.TicketType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_type required"})
	}
	seat, err := h.Engine.Retype(c.Request().Context(), svc, c.Param("seat"), body.TicketType)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, seatView(seat))
}

// Block handles POST /v1/services/:service/seats/:seat/block (admin).
func (h *ReservationHandler) Block(c echo.Context) error {
	svc, err := serviceParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	if err := h.Engine.SetUnavailable(c.Request().Context(), svc, c.Param("seat")); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Release handles POST /v1/services/:service/seats/:seat/release (admin).
func (h *ReservationHandler) Release(c echo.Context) error {
	svc, err := serviceParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	if err := h.Engine.ResetToAvailable(c.Request().Context(), svc, c.Param("seat")); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Sweep handles POST /v1/services/:service/sweep (admin): run the expiry
// sweep on demand instead of waiting for the periodic run.
func (h *ReservationHandler) Sweep(c echo.Context) error {
	svc, err := serviceParam(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
	}
	n, err := h.Engine.SweepExpired(c.Request().Context(), svc)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"expired": n})
}
