// Command flightops prints the dashboard, filter and map screens to the terminal.
//
//	flightops [-user u -pass p] dashboard
//	flightops [-user u -pass p] filter -date 2024-01-15 -airport CDG
//	flightops [-user u -pass p] map -date 2024-01-15 [-geojson]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/dharmasatrya/flightops/internal/aggregator"
	"github.com/dharmasatrya/flightops/internal/apiclient"
	"github.com/dharmasatrya/flightops/internal/config"
	"github.com/dharmasatrya/flightops/internal/filter"
	"github.com/dharmasatrya/flightops/internal/joiner"
	"github.com/dharmasatrya/flightops/internal/logging"
	"github.com/dharmasatrya/flightops/internal/mapview"
	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/ratelimit"
	"github.com/dharmasatrya/flightops/internal/session"
	"github.com/dharmasatrya/flightops/internal/timezone"
)

var (
	fUser string
	fPass string
	fAPI  string
	fTZ   string
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] dashboard | filter -date D -airport C | map [-date D] [-geojson]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	cfg := config.Load()

	flag.StringVar(&fUser, "user", os.Getenv("FLIGHTOPS_USER"), "API username")
	flag.StringVar(&fPass, "pass", os.Getenv("FLIGHTOPS_PASS"), "API password")
	flag.StringVar(&fAPI, "api", cfg.APIBaseURL, "API base URL")
	flag.StringVar(&fTZ, "tz", cfg.ViewerTZ, "zone to show times in")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogDir)
	slog.SetDefault(logger)

	if err := run(context.Background(), cfg, logger, flag.Args()); err != nil {
		if apiclient.IsUnauthorized(err) {
			color.New(color.FgRed).Fprintln(os.Stderr, "Not authorised: log in again.")
		} else {
			color.New(color.FgRed).Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type app struct {
	client  *apiclient.Client
	agg     *aggregator.Aggregator
	session *session.Session
	loc     *time.Location
	logger  *slog.Logger
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	loc, err := timezone.LoadViewerLocation(fTZ)
	if err != nil {
		return fmt.Errorf("invalid zone %q: %w", fTZ, err)
	}

	client := apiclient.New(apiclient.Config{
		BaseURL:     fAPI,
		Timeout:     cfg.APITimeout,
		RateLimiter: ratelimit.NewEndpointLimiter(cfg.RateLimit()),
	})

	req := models.LoginRequest{Username: fUser, Password: fPass}
	if err := req.Validate(); err != nil {
		return err
	}
	auth, err := client.Login(ctx, req)
	if err != nil {
		return errors.New(apiclient.UserMessage(err, models.MessageLoginFailed))
	}

	sessions := session.NewManager(session.NewMemoryStore(cfg.SessionTTL), logger)
	defer sessions.Close()
	s, err := sessions.Begin(ctx, req.Username, auth)
	if err != nil {
		return err
	}

	a := &app{
		client:  client,
		agg:     aggregator.NewAggregator(client, aggregator.Config{Timeout: cfg.FetchTimeout, Logger: logger}),
		session: s,
		loc:     loc,
		logger:  logger,
	}

	switch args[0] {
	case "dashboard":
		return a.dashboard(ctx)
	case "filter":
		return a.filter(ctx, args[1:])
	case "map":
		return a.mapView(ctx, args[1:])
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) index(airlines []models.Airline, airports []models.Airport, flights []models.Flight) *joiner.Index {
	return joiner.NewIndex(airlines, airports, flights, joiner.WithLocation(a.loc), joiner.WithLogger(a.logger))
}

func (a *app) dashboard(ctx context.Context) error {
	batch, err := a.agg.LoadDashboard(ctx, a.session)
	if err != nil {
		return fetchFailure(err)
	}
	ix := a.index(batch.Airlines, batch.Airports, batch.Flights)

	w := os.Stdout
	printFlights(w, ix.FlightRows(batch.Flights))
	printTurnarounds(w, "Turnarounds", ix.TurnaroundRows(batch.Turnarounds))
	printStats(w, batch.Stats)
	return nil
}

func (a *app) filter(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	date := fs.String("date", timezone.Today(a.loc), "service date, YYYY-MM-DD")
	airport := fs.String("airport", "", "IATA code of the airport")
	if err := fs.Parse(args); err != nil {
		return err
	}

	batch, err := a.agg.LoadDashboard(ctx, a.session)
	if err != nil {
		return fetchFailure(err)
	}
	ix := a.index(batch.Airlines, batch.Airports, batch.Flights)
	f := filter.New(a.client, a.session, ix, batch.AvailableDates, a.logger)

	if err := f.SelectDate(ctx, *date); err != nil && apiclient.IsUnauthorized(err) {
		return err
	}
	if *airport != "" {
		if err := f.SelectAirport(*airport); err == nil {
			if err := f.Submit(ctx); err != nil && apiclient.IsUnauthorized(err) {
				return err
			}
		}
	}

	printFilter(os.Stdout, f.State())
	return nil
}

func (a *app) mapView(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("map", flag.ExitOnError)
	date := fs.String("date", timezone.Today(a.loc), "service date, YYYY-MM-DD")
	asGeoJSON := fs.Bool("geojson", false, "write GeoJSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d, err := timezone.ParseDate(*date)
	if err != nil {
		return models.ErrInvalidDate
	}

	batch, err := a.agg.LoadMap(ctx, a.session)
	if err != nil {
		return fetchFailure(err)
	}
	ix := a.index(batch.Airlines, batch.Airports, batch.Flights)
	v := mapview.NewView(batch.Airports, batch.Flights, ix, batch.AvailableDates, d)

	if *asGeoJSON {
		raw, err := mapview.GeoJSON(v)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(raw, '\n'))
		return err
	}

	printMap(os.Stdout, v)
	return nil
}

// fetchFailure keeps unauthorized errors intact and replaces everything else with
// the screen's generic message.
func fetchFailure(err error) error {
	if apiclient.IsUnauthorized(err) {
		return err
	}
	slog.Debug("fetch failed", slog.Any("error", err))
	return errors.New(models.MessageFetchFailed)
}
