package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightops/internal/apiclient"
	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/session"
)

const sessionKey = "session"

// RequireSession gates a route on a live session. Without one the browser is sent
// to the login screen and no API call is made.
func (h *Handler) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var id string
		if cookie, err := c.Cookie(session.CookieName); err == nil {
			id = cookie.Value
		}

		s, err := h.sessions.Lookup(c.Request().Context(), id)
		if err != nil {
			if id != "" {
				h.clearCookie(c)
			}
			return c.Redirect(http.StatusSeeOther, "/login")
		}

		c.Set(sessionKey, s)
		return next(c)
	}
}

func currentSession(c echo.Context) *session.Session {
	s, _ := c.Get(sessionKey).(*session.Session)
	return s
}

func (h *Handler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	if err := req.Validate(); err != nil {
		return validationError(c, err)
	}

	ctx := c.Request().Context()
	auth, err := h.api.Login(ctx, req)
	if err != nil {
		h.logger.Warn("login failed", slog.String("user", req.Username), slog.Any("error", err))
		return authError(c, err, models.MessageLoginFailed)
	}

	s, err := h.sessions.Begin(ctx, req.Username, auth)
	if err != nil {
		h.logger.Error("failed to begin session", slog.Any("error", err))
		return authError(c, err, models.MessageLoginFailed)
	}

	h.setCookie(c, s)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Register creates the account and, when the API hands back tokens, logs the
// user straight in.
func (h *Handler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	if err := req.Validate(); err != nil {
		return validationError(c, err)
	}

	ctx := c.Request().Context()
	auth, err := h.api.Register(ctx, req)
	if err != nil {
		h.logger.Warn("registration failed", slog.String("user", req.Username), slog.Any("error", err))
		return authError(c, err, models.MessageRegistrationFailed)
	}

	if auth.Tokens.Access == "" {
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	s, err := h.sessions.Begin(ctx, req.Username, auth)
	if err != nil {
		h.logger.Error("failed to begin session", slog.Any("error", err))
		return authError(c, err, models.MessageRegistrationFailed)
	}

	h.setCookie(c, s)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(session.CookieName); err == nil {
		h.endSession(c, cookie.Value, "logout")
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// unauthorized handles a 401 from the API: the session is gone for good.
func (h *Handler) unauthorized(c echo.Context, s *session.Session) error {
	if s != nil {
		h.endSession(c, s.ID, "unauthorized")
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) endSession(c echo.Context, id, reason string) {
	h.filters.remove(id)
	if err := h.sessions.End(c.Request().Context(), id, reason); err != nil {
		h.logger.Warn("failed to end session", slog.Any("error", err))
	}
	h.clearCookie(c)
}

func (h *Handler) setCookie(c echo.Context, s *session.Session) {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// authError answers a failed login or registration. Client errors from the API
// keep their status and message; anything else is a gateway failure.
func authError(c echo.Context, err error, fallback string) error {
	status := http.StatusBadGateway
	var endpointErr *apiclient.EndpointError
	if errors.As(err, &endpointErr) && endpointErr.StatusCode >= 400 && endpointErr.StatusCode < 500 {
		status = endpointErr.StatusCode
	}

	errType := "auth_error"
	if status == http.StatusBadGateway {
		errType = "fetch_error"
	}
	return c.JSON(status, models.ErrorResponse{
		Error:   errType,
		Message: apiclient.UserMessage(err, fallback),
		Code:    status,
	})
}
