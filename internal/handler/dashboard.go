package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightops/internal/apiclient"
	"github.com/dharmasatrya/flightops/internal/filter"
	"github.com/dharmasatrya/flightops/internal/joiner"
	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/ranking"
	"github.com/dharmasatrya/flightops/internal/session"
	"github.com/dharmasatrya/flightops/internal/timezone"
)

// Dashboard loads the whole screen in one batch. Every mount starts a fresh
// filter for the session with today's date selected.
func (h *Handler) Dashboard(c echo.Context) error {
	s := currentSession(c)

	view, err := h.mountDashboard(c.Request().Context(), s)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return h.unauthorized(c, s)
		}
		return fetchError(c, models.MessageFetchFailed)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) mountDashboard(ctx context.Context, s *session.Session) (*models.DashboardView, error) {
	batch, err := h.aggregator.LoadDashboard(ctx, s)
	if err != nil {
		return nil, err
	}

	ix := joiner.NewIndex(batch.Airlines, batch.Airports, batch.Flights,
		joiner.WithLocation(h.loc), joiner.WithLogger(h.logger))

	f := filter.New(h.api, s, ix, batch.AvailableDates, h.logger.With(slog.String("session", shortID(s.ID))))
	h.filters.put(s.ID, f)
	if err := f.SelectDate(ctx, timezone.Today(h.loc)); err != nil && apiclient.IsUnauthorized(err) {
		return nil, err
	}

	return &models.DashboardView{
		User:        s.Username,
		Flights:     ix.FlightRows(batch.Flights),
		Turnarounds: ix.TurnaroundRows(batch.Turnarounds),
		Stats:       ranking.StatRows(batch.Stats),
		Filter:      f.State(),
	}, nil
}

// filterFor returns the session's filter, mounting the dashboard first when the
// session has none yet.
func (h *Handler) filterFor(ctx context.Context, s *session.Session) (*filter.Filter, error) {
	if f, ok := h.filters.get(s.ID); ok {
		return f, nil
	}
	if _, err := h.mountDashboard(ctx, s); err != nil {
		return nil, err
	}
	f, ok := h.filters.get(s.ID)
	if !ok {
		return nil, session.ErrNoSession
	}
	return f, nil
}

func (h *Handler) FilterState(c echo.Context) error {
	return h.withFilter(c, func(ctx context.Context, f *filter.Filter) error {
		return nil
	})
}

func (h *Handler) SelectDate(c echo.Context) error {
	var req models.DateSelection
	if err := c.Bind(&req); err != nil {
		return validationError(c, models.ErrInvalidDate)
	}
	return h.withFilter(c, func(ctx context.Context, f *filter.Filter) error {
		return f.SelectDate(ctx, req.Date)
	})
}

func (h *Handler) SelectAirport(c echo.Context) error {
	var req models.AirportSelection
	if err := c.Bind(&req); err != nil {
		return validationError(c, models.ErrAirportNotAvailable)
	}
	return h.withFilter(c, func(ctx context.Context, f *filter.Filter) error {
		return f.SelectAirport(req.AirportCode)
	})
}

// Submit answers 200 with the filter state whether or not the fetch worked; the
// state's message tells the user what went wrong.
func (h *Handler) Submit(c echo.Context) error {
	return h.withFilter(c, func(ctx context.Context, f *filter.Filter) error {
		return f.Submit(ctx)
	})
}

// withFilter runs op against the session's filter and renders the resulting
// state. Only an unauthorized answer changes the response.
func (h *Handler) withFilter(c echo.Context, op func(context.Context, *filter.Filter) error) error {
	s := currentSession(c)
	ctx := c.Request().Context()

	f, err := h.filterFor(ctx, s)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return h.unauthorized(c, s)
		}
		return fetchError(c, models.MessageFetchFailed)
	}

	if err := op(ctx, f); err != nil {
		if apiclient.IsUnauthorized(err) {
			return h.unauthorized(c, s)
		}
		var validation models.ValidationError
		if !errors.As(err, &validation) {
			h.logger.Debug("filter operation failed", slog.Any("error", err))
		}
	}
	return c.JSON(http.StatusOK, f.State())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// filterRegistry keeps one filter per session, replaced on every dashboard mount.
type filterRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]filterEntry
	now     func() time.Time
}

type filterEntry struct {
	filter    *filter.Filter
	mountedAt time.Time
}

func newFilterRegistry(ttl time.Duration) *filterRegistry {
	return &filterRegistry{
		ttl:     ttl,
		entries: make(map[string]filterEntry),
		now:     time.Now,
	}
}

func (r *filterRegistry) put(id string, f *filter.Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, e := range r.entries {
		if now.Sub(e.mountedAt) > r.ttl {
			delete(r.entries, k)
		}
	}
	r.entries[id] = filterEntry{filter: f, mountedAt: now}
}

func (r *filterRegistry) get(id string) (*filter.Filter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || r.now().Sub(e.mountedAt) > r.ttl {
		return nil, false
	}
	return e.filter, true
}

func (r *filterRegistry) remove(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}
