package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/flightops/internal/apiclient"
	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/session"
)

// Source is the subset of the API client a screen mount reads from.
type Source interface {
	ListFlights(ctx context.Context, s *session.Session) ([]models.Flight, error)
	ListTurnarounds(ctx context.Context, s *session.Session) ([]models.Turnaround, error)
	ListAirlines(ctx context.Context, s *session.Session) ([]models.Airline, error)
	ListAirports(ctx context.Context, s *session.Session) ([]models.Airport, error)
	AirlineStats(ctx context.Context, s *session.Session) ([]models.AirlineTurnaroundStats, error)
	AvailableDates(ctx context.Context, s *session.Session) ([]string, error)
}

type Config struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

type Aggregator struct {
	source Source
	config Config
}

// DashboardBatch is everything the dashboard screen needs. It is only ever
// returned complete.
type DashboardBatch struct {
	Flights        []models.Flight
	Turnarounds    []models.Turnaround
	Airlines       []models.Airline
	Airports       []models.Airport
	Stats          []models.AirlineTurnaroundStats
	AvailableDates []string
}

type MapBatch struct {
	Airports       []models.Airport
	Flights        []models.Flight
	Airlines       []models.Airline
	AvailableDates []string
}

func NewAggregator(source Source, config Config) *Aggregator {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Aggregator{
		source: source,
		config: config,
	}
}

// LoadDashboard issues the six dashboard reads concurrently and waits for all of
// them. The first failure cancels the rest and is the error returned, unless
// some read was rejected as unauthorized: that error wins.
func (a *Aggregator) LoadDashboard(ctx context.Context, s *session.Session) (*DashboardBatch, error) {
	startTime := time.Now()
	batchCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var batch DashboardBatch
	var auth authFailure
	g, gctx := errgroup.WithContext(batchCtx)

	fetch(g, gctx, &auth, s, &batch.Flights, a.source.ListFlights)
	fetch(g, gctx, &auth, s, &batch.Turnarounds, a.source.ListTurnarounds)
	fetch(g, gctx, &auth, s, &batch.Airlines, a.source.ListAirlines)
	fetch(g, gctx, &auth, s, &batch.Airports, a.source.ListAirports)
	fetch(g, gctx, &auth, s, &batch.Stats, a.source.AirlineStats)
	fetch(g, gctx, &auth, s, &batch.AvailableDates, a.source.AvailableDates)

	if err := auth.prefer(g.Wait()); err != nil {
		a.config.Logger.Warn("dashboard batch failed", slog.Any("error", err))
		return nil, err
	}

	a.config.Logger.Debug("dashboard batch loaded",
		slog.Int("flights", len(batch.Flights)),
		slog.Int("turnarounds", len(batch.Turnarounds)),
		slog.Duration("elapsed", time.Since(startTime)))
	return &batch, nil
}

func (a *Aggregator) LoadMap(ctx context.Context, s *session.Session) (*MapBatch, error) {
	startTime := time.Now()
	batchCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var batch MapBatch
	var auth authFailure
	g, gctx := errgroup.WithContext(batchCtx)

	fetch(g, gctx, &auth, s, &batch.Airports, a.source.ListAirports)
	fetch(g, gctx, &auth, s, &batch.Flights, a.source.ListFlights)
	fetch(g, gctx, &auth, s, &batch.Airlines, a.source.ListAirlines)
	fetch(g, gctx, &auth, s, &batch.AvailableDates, a.source.AvailableDates)

	if err := auth.prefer(g.Wait()); err != nil {
		a.config.Logger.Warn("map batch failed", slog.Any("error", err))
		return nil, err
	}

	a.config.Logger.Debug("map batch loaded",
		slog.Int("flights", len(batch.Flights)),
		slog.Int("airports", len(batch.Airports)),
		slog.Duration("elapsed", time.Since(startTime)))
	return &batch, nil
}

// authFailure holds the first unauthorized error seen in a batch. A 401 must
// end the session even when another read failed first.
type authFailure struct {
	mu  sync.Mutex
	err error
}

func (f *authFailure) record(err error) {
	if !apiclient.IsUnauthorized(err) {
		return
	}
	f.mu.Lock()
	if f.err == nil {
		f.err = err
	}
	f.mu.Unlock()
}

func (f *authFailure) prefer(err error) error {
	if err == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return err
}

// fetch runs one read in the group; dst is written only on success and only read
// after Wait.
func fetch[T any](g *errgroup.Group, ctx context.Context, auth *authFailure, s *session.Session, dst *T, read func(context.Context, *session.Session) (T, error)) {
	g.Go(func() error {
		v, err := read(ctx, s)
		if err != nil {
			auth.record(err)
			return err
		}
		*dst = v
		return nil
	})
}
