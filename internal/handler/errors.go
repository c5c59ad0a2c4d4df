package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/staybook/internal/repository"
	"github.com/iliyamo/staybook/internal/service"
	"github.com/iliyamo/staybook/internal/storage"
	"github.com/iliyamo/staybook/internal/utils"
)

// respondError maps a service or repository error onto a status code and
// an {"error": ...} body.  Unclassified errors are logged and reported as
// 500 without detail.
func respondError(c echo.Context, log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "email already registered"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	case errors.Is(err, service.ErrIncorrectPassword):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Incorrect password"})
	case errors.Is(err, utils.ErrInvalidToken):
		return unauthorized(c)
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, storage.ErrUpstream):
		log.ErrorContext(c.Request().Context(), "blob storage failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	log.ErrorContext(c.Request().Context(), "request failed",
		"method", c.Request().Method, "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
