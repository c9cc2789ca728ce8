// Package joiner cross-references flights, turnarounds, airlines and airports by
// id. A record whose references do not all resolve is left out of the rendered
// rows; that is the normal state while reference data is incomplete, not an
// error.
package joiner

import (
	"log/slog"
	"time"

	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/timezone"
	"github.com/dharmasatrya/flightops/pkg/duration"
)

type Index struct {
	Airlines map[int]models.Airline
	Airports map[int]models.Airport
	Flights  map[int]models.Flight

	loc    *time.Location
	logger *slog.Logger
}

type Option func(*Index)

// WithLocation sets the zone timestamps are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(ix *Index) {
		if loc != nil {
			ix.loc = loc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// NewIndex builds the id lookups once per fetch batch. On a duplicate id the last
// record wins.
func NewIndex(airlines []models.Airline, airports []models.Airport, flights []models.Flight, opts ...Option) *Index {
	ix := &Index{
		Airlines: make(map[int]models.Airline, len(airlines)),
		Airports: make(map[int]models.Airport, len(airports)),
		Flights:  make(map[int]models.Flight, len(flights)),
		loc:      time.Local,
		logger:   slog.Default(),
	}
	for _, a := range airlines {
		ix.Airlines[a.ID] = a
	}
	for _, a := range airports {
		ix.Airports[a.ID] = a
	}
	for _, f := range flights {
		ix.Flights[f.ID] = f
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

func (ix *Index) Location() *time.Location {
	return ix.loc
}

type ResolvedFlight struct {
	Flight    models.Flight
	Airline   models.Airline
	Departure models.Airport
	Arrival   models.Airport
}

// Label renders the airline code and flight number, e.g. "AF123".
func (r ResolvedFlight) Label() string {
	return r.Airline.IATACode + r.Flight.FlightNumber
}

type ResolvedTurnaround struct {
	Turnaround models.Turnaround
	Airport    models.Airport
	Arrival    ResolvedLeg
	Departure  ResolvedLeg
}

// ResolvedLeg is one of a turnaround's flights with its airline.
type ResolvedLeg struct {
	Flight  models.Flight
	Airline models.Airline
}

func (l ResolvedLeg) Label() string {
	return l.Airline.IATACode + l.Flight.FlightNumber
}

func (ix *Index) ResolveFlight(f models.Flight) (ResolvedFlight, bool) {
	airline, ok := ix.Airlines[f.Airline]
	if !ok {
		return ResolvedFlight{}, false
	}
	dep, ok := ix.Airports[f.DepartureAirport]
	if !ok {
		return ResolvedFlight{}, false
	}
	arr, ok := ix.Airports[f.ArrivalAirport]
	if !ok {
		return ResolvedFlight{}, false
	}
	return ResolvedFlight{Flight: f, Airline: airline, Departure: dep, Arrival: arr}, true
}

func (ix *Index) resolveLeg(id int) (ResolvedLeg, bool) {
	f, ok := ix.Flights[id]
	if !ok {
		return ResolvedLeg{}, false
	}
	airline, ok := ix.Airlines[f.Airline]
	if !ok {
		return ResolvedLeg{}, false
	}
	return ResolvedLeg{Flight: f, Airline: airline}, true
}

// ResolveTurnaround requires the airport, both flights and both flights' airlines.
func (ix *Index) ResolveTurnaround(t models.Turnaround) (ResolvedTurnaround, bool) {
	airport, ok := ix.Airports[t.Airport]
	if !ok {
		return ResolvedTurnaround{}, false
	}
	arr, ok := ix.resolveLeg(t.ArrivalFlight)
	if !ok {
		return ResolvedTurnaround{}, false
	}
	dep, ok := ix.resolveLeg(t.DepartureFlight)
	if !ok {
		return ResolvedTurnaround{}, false
	}
	return ResolvedTurnaround{Turnaround: t, Airport: airport, Arrival: arr, Departure: dep}, true
}

func (ix *Index) FlightRows(flights []models.Flight) []models.FlightRow {
	rows := make([]models.FlightRow, 0, len(flights))
	for _, f := range flights {
		r, ok := ix.ResolveFlight(f)
		if !ok {
			ix.logger.Debug("flight left out, unresolved reference", slog.Int("flight", f.ID))
			continue
		}
		rows = append(rows, ix.flightRow(r))
	}
	return rows
}

func (ix *Index) flightRow(r ResolvedFlight) models.FlightRow {
	status := models.StatusScheduled
	if r.Flight.ActualDeparture != nil {
		status = models.StatusActive
	}
	return models.FlightRow{
		ID:                 r.Flight.ID,
		Flight:             r.Label(),
		Airline:            r.Airline.Name,
		From:               r.Departure.Label(),
		To:                 r.Arrival.Label(),
		ScheduledDeparture: timezone.FormatLocal(r.Flight.ScheduledDeparture.Time, ix.loc, timezone.DisplayLayout),
		ScheduledArrival:   timezone.FormatLocal(r.Flight.ScheduledArrival.Time, ix.loc, timezone.DisplayLayout),
		Status:             status,
	}
}

func (ix *Index) TurnaroundRows(turnarounds []models.Turnaround) []models.TurnaroundRow {
	rows := make([]models.TurnaroundRow, 0, len(turnarounds))
	for _, t := range turnarounds {
		r, ok := ix.ResolveTurnaround(t)
		if !ok {
			ix.logger.Debug("turnaround left out, unresolved reference", slog.Int("turnaround", t.ID))
			continue
		}
		rows = append(rows, ix.turnaroundRow(r))
	}
	return rows
}

func (ix *Index) turnaroundRow(r ResolvedTurnaround) models.TurnaroundRow {
	t := r.Turnaround

	scheduled, err := duration.Between(t.ScheduledStart.Time, t.ScheduledEnd.Time)
	if err != nil {
		ix.logger.Warn("turnaround has an invalid scheduled window",
			slog.Int("turnaround", t.ID), slog.Any("error", err))
		scheduled = models.DurationUnavailable
	}

	status := models.StatusScheduled
	if t.ActualStart != nil {
		status = models.StatusInProgress
	}

	return models.TurnaroundRow{
		ID:                t.ID,
		Airport:           r.Airport.Label(),
		ArrivalFlight:     r.Arrival.Label(),
		DepartureFlight:   r.Departure.Label(),
		ScheduledDuration: scheduled,
		Status:            status,
	}
}
