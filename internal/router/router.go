package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/staybook/internal/handler"
	"github.com/iliyamo/staybook/internal/middleware"
)

// Deps carries everything the routes need.  It is assembled once in
// cmd/server.
type Deps struct {
	Log        *slog.Logger
	CORSOrigin string
	Sessions   middleware.Sessions
	RateLimit  echo.MiddlewareFunc // applied to credential and upload routes; nil disables
	Auth       *handler.AuthHandler
	Uploads    *handler.UploadHandler
	Places     *handler.PlaceHandler
	Bookings   *handler.BookingHandler
}

// Setup installs the global middleware and registers every route.
func Setup(e *echo.Echo, d Deps) {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.RateLimit == nil {
		d.RateLimit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	UseCommon(e, d.Log, d.CORSOrigin)

	RegisterRoutes(e)
	RegisterAuth(e, d.Auth, d.RateLimit)
	RegisterUploads(e, d.Uploads, d.RateLimit)
	RegisterPlaces(e, d.Places, d.Sessions)
	RegisterBookings(e, d.Bookings, d.Sessions)
}

// UseCommon installs panic recovery, request ids, structured request
// logging and CORS for the front end.  Cookies are only sent
// cross-origin when credentials are allowed, so the origin must be
// explicit.
func UseCommon(e *echo.Echo, log *slog.Logger, corsOrigin string) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
				slog.String("remote_ip", v.RemoteIP),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				level = slog.LevelError
			}
			log.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))
	if corsOrigin != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{corsOrigin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowCredentials: true,
		}))
	}
}

// RegisterRoutes registers routes that do not touch any domain state.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account and session endpoints.  Signup and
// login sit behind the rate limiter.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	e.POST("/signup", a.Signup, limit)
	e.POST("/login", a.Login, limit)
	e.GET("/profile", a.Profile)
	e.POST("/logout", a.Logout)
}

// RegisterUploads registers the photo upload endpoints.
func RegisterUploads(e *echo.Echo, u *handler.UploadHandler, limit echo.MiddlewareFunc) {
	e.POST("/upload-by-link", u.UploadByLink, limit)
	e.POST("/upload", u.Upload, limit)
}

// RegisterPlaces registers the listing endpoints.  Reads and deletes are
// public; creating, updating and listing one's own places need a session.
func RegisterPlaces(e *echo.Echo, p *handler.PlaceHandler, s middleware.Sessions) {
	auth := s.RequireSession()

	e.POST("/places", p.Create, auth)
	e.PUT("/places", p.Update, auth)
	e.GET("/user-places", p.UserPlaces, auth)

	e.GET("/places", p.List)
	e.GET("/places/:id", p.Get)
	e.DELETE("/places/:id", p.Delete)
	e.GET("/places/:id/bookings", p.ListBookings)
}

// RegisterBookings registers the booking endpoints.  Deleting a booking
// does not require a session.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, s middleware.Sessions) {
	auth := s.RequireSession()

	e.POST("/bookings", b.Create, auth)
	e.GET("/bookings", b.List, auth)
	e.DELETE("/bookings/:id", b.Delete)
}
