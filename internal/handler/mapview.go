package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightops/internal/apiclient"
	"github.com/dharmasatrya/flightops/internal/joiner"
	"github.com/dharmasatrya/flightops/internal/mapview"
	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/timezone"
)

func (h *Handler) Map(c echo.Context) error {
	v, err := h.loadMap(c)
	if err != nil || v == nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) MapGeoJSON(c echo.Context) error {
	v, err := h.loadMap(c)
	if err != nil || v == nil {
		return err
	}
	raw, err := mapview.GeoJSON(*v)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/geo+json", raw)
}

// loadMap writes the response itself on failure and then returns a nil view.
func (h *Handler) loadMap(c echo.Context) (*mapview.View, error) {
	var req models.DateSelection
	if err := c.Bind(&req); err != nil {
		return nil, validationError(c, models.ErrInvalidDate)
	}

	date := timezone.Today(h.loc)
	if req.Date != "" {
		d, err := timezone.ParseDate(req.Date)
		if err != nil {
			return nil, validationError(c, models.ErrInvalidDate)
		}
		date = d
	}

	s := currentSession(c)
	batch, err := h.aggregator.LoadMap(c.Request().Context(), s)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return nil, h.unauthorized(c, s)
		}
		return nil, fetchError(c, models.MessageFetchFailed)
	}

	ix := joiner.NewIndex(batch.Airlines, batch.Airports, batch.Flights,
		joiner.WithLocation(h.loc), joiner.WithLogger(h.logger))
	v := mapview.NewView(batch.Airports, batch.Flights, ix, batch.AvailableDates, date)
	return &v, nil
}
