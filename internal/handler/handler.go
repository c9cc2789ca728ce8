package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightops/internal/aggregator"
	"github.com/dharmasatrya/flightops/internal/filter"
	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/session"
)

// API is the part of the flight API client the handlers call directly. Batch
// reads go through the aggregator.
type API interface {
	Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error)
	filter.Source
}

type Config struct {
	API          API
	Aggregator   *aggregator.Aggregator
	Sessions     *session.Manager
	Location     *time.Location
	Logger       *slog.Logger
	CookieSecure bool
	// SessionTTL bounds how long an idle filter is kept in memory.
	SessionTTL time.Duration
}

type Handler struct {
	api          API
	aggregator   *aggregator.Aggregator
	sessions     *session.Manager
	loc          *time.Location
	logger       *slog.Logger
	cookieSecure bool
	filters      *filterRegistry
}

func New(cfg Config) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	return &Handler{
		api:          cfg.API,
		aggregator:   cfg.Aggregator,
		sessions:     cfg.Sessions,
		loc:          cfg.Location,
		logger:       cfg.Logger,
		cookieSecure: cfg.CookieSecure,
		filters:      newFilterRegistry(cfg.SessionTTL),
	}
}

// Routes registers every screen on e. Everything except health and the
// authentication screens sits behind the session gate.
func (h *Handler) Routes(e *echo.Echo) {
	e.GET("/health", HealthHandler)
	e.GET("/login", LoginScreen)
	e.POST("/login", h.Login)
	e.POST("/register", h.Register)
	e.POST("/logout", h.Logout)

	gate := h.RequireSession
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}, gate)
	e.GET("/dashboard", h.Dashboard, gate)
	e.GET("/dashboard/filter", h.FilterState, gate)
	e.POST("/dashboard/filter/date", h.SelectDate, gate)
	e.POST("/dashboard/filter/airport", h.SelectAirport, gate)
	e.POST("/dashboard/filter/submit", h.Submit, gate)
	e.GET("/map", h.Map, gate)
	e.GET("/map/geojson", h.MapGeoJSON, gate)
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// LoginScreen is where the session gate sends the browser.
func LoginScreen(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"screen": "login",
	})
}

func fetchError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Error:   "fetch_error",
		Message: message,
		Code:    http.StatusBadGateway,
	})
}

func validationError(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
		Code:    http.StatusBadRequest,
	})
}
