package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/staybook/internal/middleware"
	"github.com/iliyamo/staybook/internal/model"
	"github.com/iliyamo/staybook/internal/service"
)

// BookingHandler serves the booking endpoints.
type BookingHandler struct {
	Bookings *service.BookingService
	Timeout  time.Duration
	Log      *slog.Logger
}

func NewBookingHandler(bookings *service.BookingService, timeout time.Duration, log *slog.Logger) *BookingHandler {
	if bookings == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &BookingHandler{Bookings: bookings, Timeout: timeout, Log: log}
}

// bookingReq accepts the listing id as either "place" or "listingId".
type bookingReq struct {
	Place     string      `json:"place"`
	ListingID string      `json:"listingId"`
	Checkin   bookingDate `json:"checkin"`
	Checkout  bookingDate `json:"checkout"`
	Guests    int         `json:"guests"`
	Phone     string      `json:"phone"`
	Name      string      `json:"name"`
	Price     float64     `json:"price"`
}

// bookingDate accepts RFC 3339 timestamps as well as plain YYYY-MM-DD
// dates, which is what date inputs submit.
type bookingDate struct{ time.Time }

func (d *bookingDate) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// Create handles POST /bookings on behalf of the caller.
func (h *BookingHandler) Create(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	place := req.Place
	if place == "" {
		place = req.ListingID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	b, err := h.Bookings.Create(ctx, who, model.BookingFields{
		Place:    place,
		Checkin:  req.Checkin.Time,
		Checkout: req.Checkout.Time,
		Guests:   req.Guests,
		Phone:    req.Phone,
		Name:     req.Name,
		Price:    req.Price,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// List handles GET /bookings: the caller's bookings, each with its
// listing embedded as "place".
func (h *BookingHandler) List(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	bookings, err := h.Bookings.ListForUser(ctx, who)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

// Delete handles DELETE /bookings/:id.  It does not check who owns the
// booking.
func (h *BookingHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if err := h.Bookings.Delete(ctx, id); err != nil {
		h.Log.ErrorContext(ctx, "booking delete failed", "booking_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("Booking with id %s deleted successfully", id)})
}
