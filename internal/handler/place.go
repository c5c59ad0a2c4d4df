package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/staybook/internal/middleware"
	"github.com/iliyamo/staybook/internal/model"
	"github.com/iliyamo/staybook/internal/repository"
	"github.com/iliyamo/staybook/internal/service"
)

// PlaceHandler serves the listing ("place") endpoints.
type PlaceHandler struct {
	Places   *service.ListingService
	Bookings *service.BookingService
	Timeout  time.Duration
	Log      *slog.Logger
}

func NewPlaceHandler(places *service.ListingService, bookings *service.BookingService, timeout time.Duration, log *slog.Logger) *PlaceHandler {
	if places == nil || bookings == nil {
		panic("nil service passed to NewPlaceHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PlaceHandler{Places: places, Bookings: bookings, Timeout: timeout, Log: log}
}

// updatePlaceReq is the PUT /places body: the listing id next to the
// full set of editable fields.
type updatePlaceReq struct {
	ID string `json:"id"`
	model.ListingFields
}

func (h *PlaceHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// Create handles POST /places.  The caller becomes the owner.
func (h *PlaceHandler) Create(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var f model.ListingFields
	if err := c.Bind(&f); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	l, err := h.Places.Create(ctx, who, f)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, l)
}

// UserPlaces handles GET /user-places.
func (h *PlaceHandler) UserPlaces(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	places, err := h.Places.ListByOwner(ctx, who)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, places)
}

// Get handles GET /places/:id.
func (h *PlaceHandler) Get(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	l, err := h.Places.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "place not found"})
		}
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, l)
}

// Update handles PUT /places.  Only the owner may update; anyone else
// gets 403 and the listing is left unchanged.
func (h *PlaceHandler) Update(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req updatePlaceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.ID) == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "id is required"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Places.Update(ctx, who, req.ID, req.ListingFields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "place not found"})
		}
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, "ok")
}

// List handles GET /places?limit=&offset=.  Results are newest first.
func (h *PlaceHandler) List(c echo.Context) error {
	var page model.Page
	var err error
	if page.Limit, err = queryInt(c, "limit"); err != nil {
		return badRequest(c, "limit must be a non-negative integer")
	}
	if page.Offset, err = queryInt(c, "offset"); err != nil {
		return badRequest(c, "offset must be a non-negative integer")
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	places, err := h.Places.List(ctx, page)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, places)
}

// Delete handles DELETE /places/:id, removing the listing together with
// its bookings and photos.
func (h *PlaceHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Places.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": fmt.Sprintf("Place with id %s not found", id)})
		}
		h.Log.ErrorContext(ctx, "place delete failed", "place_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("Place with id %s deleted successfully", id)})
}

// ListBookings handles GET /places/:id/bookings.
func (h *PlaceHandler) ListBookings(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	bookings, err := h.Bookings.ListForListing(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Place not found"})
		}
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}
