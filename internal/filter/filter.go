// Package filter implements the dashboard's two-step turnaround filter: pick a
// date, which loads the airports served that day, then pick one of those airports
// and submit.
package filter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dharmasatrya/flightops/internal/apiclient"
	"github.com/dharmasatrya/flightops/internal/joiner"
	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/session"
	"github.com/dharmasatrya/flightops/internal/timezone"
)

type Source interface {
	AvailableAirports(ctx context.Context, s *session.Session, date string) ([]models.Airport, error)
	TurnaroundsByDateAndAirport(ctx context.Context, s *session.Session, date, airportCode string) ([]models.Turnaround, error)
}

// Filter is safe for concurrent use. Network calls run outside the lock; each
// response is applied only if no newer selection happened while it was in
// flight.
type Filter struct {
	source  Source
	session *session.Session
	index   *joiner.Index
	logger  *slog.Logger

	mu sync.Mutex
	// dateGen changes with every date selection and guards the airports fetch.
	dateGen uint64
	// selectionGen changes with every date or airport selection and guards submit.
	selectionGen uint64

	date              string
	airportCode       string
	availableDates    []string
	availableAirports []models.Airport
	airportsSettled   bool
	results           []models.TurnaroundRow
	message           string
}

// New creates the filter for one screen mount. index resolves filtered
// turnarounds against the reference data loaded with that mount.
func New(source Source, s *session.Session, index *joiner.Index, availableDates []string, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{
		source:         source,
		session:        s,
		index:          index,
		logger:         logger,
		availableDates: slices.Clone(availableDates),
	}
}

// SelectDate clears the chosen airport and any results, then loads the airports
// with service on date. A failed airport load only leaves the list empty; an
// unauthorized answer is returned so the caller can end the session.
func (f *Filter) SelectDate(ctx context.Context, date string) error {
	normalized, err := timezone.ParseDate(date)

	f.mu.Lock()
	f.dateGen++
	f.selectionGen++
	gen := f.dateGen
	f.airportCode = ""
	f.results = nil
	f.message = ""
	f.availableAirports = nil
	f.airportsSettled = false
	if err != nil {
		f.date = ""
		f.message = models.ErrInvalidDate.Error()
		f.mu.Unlock()
		return models.ErrInvalidDate
	}
	f.date = normalized
	f.mu.Unlock()

	airports, err := f.source.AvailableAirports(ctx, f.session, normalized)
	if err != nil && apiclient.IsUnauthorized(err) {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.dateGen {
		f.logger.Debug("discarding stale available airports", slog.String("date", normalized))
		return nil
	}

	f.airportsSettled = true
	if err != nil {
		f.logger.Warn("failed to fetch available airports",
			slog.String("date", normalized), slog.Any("error", err))
		return nil
	}
	f.availableAirports = airports
	return nil
}

// SelectAirport picks an airport from the set loaded for the current date. An
// empty code clears the selection.
func (f *Filter) SelectAirport(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	f.mu.Lock()
	defer f.mu.Unlock()

	f.selectionGen++
	f.message = ""
	f.results = nil

	if code == "" {
		f.airportCode = ""
		return nil
	}
	for _, a := range f.availableAirports {
		if strings.EqualFold(a.IATACode, code) {
			f.airportCode = a.IATACode
			return nil
		}
	}

	f.airportCode = ""
	f.message = models.ErrAirportNotAvailable.Error()
	return models.ErrAirportNotAvailable
}

// Submit fetches the turnarounds for the chosen date and airport. Without both,
// it fails locally and no request is made.
func (f *Filter) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.date == "" || f.airportCode == "" {
		f.message = models.ErrMissingFilterInput.Error()
		f.mu.Unlock()
		return models.ErrMissingFilterInput
	}
	gen := f.selectionGen
	date, code := f.date, f.airportCode
	f.mu.Unlock()

	turnarounds, err := f.source.TurnaroundsByDateAndAirport(ctx, f.session, date, code)
	if err != nil && apiclient.IsUnauthorized(err) {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.selectionGen {
		f.logger.Debug("discarding stale filter results", slog.String("date", date), slog.String("airport", code))
		return nil
	}

	if err != nil {
		f.results = nil
		f.message = apiclient.UserMessage(err, models.MessageFilterFetchFailed)
		return fmt.Errorf("filtering turnarounds: %w", err)
	}

	f.results = f.index.TurnaroundRows(turnarounds)
	f.message = ""
	return nil
}

func (f *Filter) IsDateAvailable(date string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.availableDates, date)
}

// State is a snapshot for rendering.
func (f *Filter) State() models.FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := models.FilterState{
		Date:              f.date,
		DateAvailable:     slices.Contains(f.availableDates, f.date),
		AirportCode:       f.airportCode,
		AvailableAirports: make([]models.AirportOption, 0, len(f.availableAirports)),
		CanSubmit:         f.date != "" && f.airportCode != "",
		Results:           slices.Clone(f.results),
		Message:           f.message,
	}
	if state.Results == nil {
		state.Results = []models.TurnaroundRow{}
	}
	if n := len(f.availableDates); n > 0 {
		state.MinDate = f.availableDates[0]
		state.MaxDate = f.availableDates[n-1]
	}

	for _, a := range f.availableAirports {
		state.AvailableAirports = append(state.AvailableAirports, models.AirportOption{
			Code:  a.IATACode,
			Label: a.IATACode + " - " + a.Name + " (" + a.City + ")",
		})
	}

	if f.date != "" && !state.DateAvailable {
		state.Warnings = append(state.Warnings, models.WarningNoFlightsOnDate)
	}
	if f.date != "" && f.airportsSettled && len(f.availableAirports) == 0 {
		state.Warnings = append(state.Warnings, models.WarningNoAirportsOnDate)
	}

	return state
}
