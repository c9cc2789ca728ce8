package filter

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightops/internal/apiclient"
	"github.com/dharmasatrya/flightops/internal/apitest"
	"github.com/dharmasatrya/flightops/internal/joiner"
	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/session"
)

type fakeSource struct {
	mu           sync.Mutex
	airports     map[string][]models.Airport
	turnarounds  []models.Turnaround
	airportErr   error
	filterErr    error
	airportCalls map[string]int
	filterCalls  int
	gates        map[string]chan struct{}
	started      chan string
	filterGate   chan struct{}
	filterStart  chan struct{}
}

func newFakeSource() *fakeSource {
	fx := apitest.DefaultFixtures()
	return &fakeSource{
		airports: map[string][]models.Airport{
			apitest.Day:  {fx.Airports[0], fx.Airports[1]},
			"2024-01-16": {fx.Airports[2]},
		},
		turnarounds:  fx.Turnarounds,
		airportCalls: make(map[string]int),
		gates:        make(map[string]chan struct{}),
		started:      make(chan string, 8),
		filterStart:  make(chan struct{}, 8),
	}
}

func (f *fakeSource) AvailableAirports(ctx context.Context, s *session.Session, date string) ([]models.Airport, error) {
	f.mu.Lock()
	f.airportCalls[date]++
	gate := f.gates[date]
	err := f.airportErr
	out := f.airports[date]
	f.mu.Unlock()

	f.started <- date
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeSource) TurnaroundsByDateAndAirport(ctx context.Context, s *session.Session, date, code string) ([]models.Turnaround, error) {
	f.mu.Lock()
	gate := f.filterGate
	f.mu.Unlock()

	f.filterStart <- struct{}{}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.filterCalls++
	if f.filterErr != nil {
		return nil, f.filterErr
	}

	out := []models.Turnaround{}
	for _, t := range f.turnarounds {
		if t.ScheduledStart.Format("2006-01-02") != date {
			continue
		}
		if (code == "CDG" && t.Airport == apitest.AirportCDG) || (code == "ORY" && t.Airport == apitest.AirportORY) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeSource) calls(date string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.airportCalls[date]
}

func newFilter(src *fakeSource) *Filter {
	fx := apitest.DefaultFixtures()
	ix := joiner.NewIndex(fx.Airlines, fx.Airports, fx.Flights, joiner.WithLocation(time.UTC))
	return New(src, &session.Session{ID: "s", Token: "t"}, ix, fx.AvailableDates, nil)
}

func TestSubmitRequiresDateAndAirport(t *testing.T) {
	src := newFakeSource()
	f := newFilter(src)

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, models.ErrMissingFilterInput)
	assert.Equal(t, "Both date and airport are required", f.State().Message)

	require.NoError(t, f.SelectDate(context.Background(), apitest.Day))
	err = f.Submit(context.Background())
	assert.ErrorIs(t, err, models.ErrMissingFilterInput)
	assert.Equal(t, "Both date and airport are required", f.State().Message)

	assert.Equal(t, 0, src.filterCalls)
}

func TestSelectDateClearsSelectionAndFetchesOnce(t *testing.T) {
	src := newFakeSource()
	f := newFilter(src)
	ctx := context.Background()

	require.NoError(t, f.SelectDate(ctx, apitest.Day))
	require.NoError(t, f.SelectAirport("cdg"))
	require.NoError(t, f.Submit(ctx))

	state := f.State()
	assert.Equal(t, "CDG", state.AirportCode)
	require.Len(t, state.Results, 1)
	assert.Equal(t, "AF100", state.Results[0].ArrivalFlight)
	assert.True(t, state.CanSubmit)

	require.NoError(t, f.SelectDate(ctx, "2024-01-16"))

	state = f.State()
	assert.Equal(t, "2024-01-16", state.Date)
	assert.Empty(t, state.AirportCode)
	assert.Empty(t, state.Results)
	assert.False(t, state.CanSubmit)
	assert.Equal(t, []models.AirportOption{{Code: "NCE", Label: "NCE - Nice Cote d'Azur (Nice)"}}, state.AvailableAirports)
	assert.Equal(t, 1, src.calls("2024-01-16"))
	assert.Equal(t, 1, src.calls(apitest.Day))
}

func TestStaleAirportsResponseIsDiscarded(t *testing.T) {
	src := newFakeSource()
	src.gates[apitest.Day] = make(chan struct{})
	f := newFilter(src)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.SelectDate(ctx, apitest.Day) }()
	require.Equal(t, apitest.Day, <-src.started)

	require.NoError(t, f.SelectDate(ctx, "2024-01-16"))
	<-src.started

	close(src.gates[apitest.Day])
	require.NoError(t, <-done)

	state := f.State()
	assert.Equal(t, "2024-01-16", state.Date)
	require.Len(t, state.AvailableAirports, 1)
	assert.Equal(t, "NCE", state.AvailableAirports[0].Code)
}

func TestStaleSubmitIsDiscarded(t *testing.T) {
	src := newFakeSource()
	f := newFilter(src)
	ctx := context.Background()

	require.NoError(t, f.SelectDate(ctx, apitest.Day))
	require.NoError(t, f.SelectAirport("ORY"))

	src.filterGate = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- f.Submit(ctx) }()
	<-src.filterStart

	require.NoError(t, f.SelectAirport("CDG"))
	close(src.filterGate)
	require.NoError(t, <-done)

	state := f.State()
	assert.Equal(t, "CDG", state.AirportCode)
	assert.Empty(t, state.Results, "results for ORY must not land on the CDG selection")
}

func TestSelectAirportMustBeAvailable(t *testing.T) {
	src := newFakeSource()
	f := newFilter(src)

	require.NoError(t, f.SelectDate(context.Background(), apitest.Day))
	err := f.SelectAirport("NCE")
	assert.ErrorIs(t, err, models.ErrAirportNotAvailable)

	state := f.State()
	assert.Empty(t, state.AirportCode)
	assert.Equal(t, models.ErrAirportNotAvailable.Error(), state.Message)

	require.NoError(t, f.SelectAirport("ORY"))
	assert.Empty(t, f.State().Message)
}

func TestEmptyFilterResultIsSuccess(t *testing.T) {
	src := newFakeSource()
	src.airports["2024-01-14"] = []models.Airport{apitest.DefaultFixtures().Airports[0]}
	f := newFilter(src)
	ctx := context.Background()

	require.NoError(t, f.SelectDate(ctx, "2024-01-14"))
	require.NoError(t, f.SelectAirport("CDG"))
	require.NoError(t, f.Submit(ctx))

	state := f.State()
	assert.Empty(t, state.Results)
	assert.NotNil(t, state.Results)
	assert.Empty(t, state.Message)
}

func TestSubmitFailureSetsMessage(t *testing.T) {
	src := newFakeSource()
	f := newFilter(src)
	ctx := context.Background()

	require.NoError(t, f.SelectDate(ctx, apitest.Day))
	require.NoError(t, f.SelectAirport("CDG"))
	require.NoError(t, f.Submit(ctx))
	require.NotEmpty(t, f.State().Results)

	src.filterErr = apiclient.NewEndpointError(apiclient.EndpointFilteredTurnarounds, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD", apiclient.ErrStatus)
	assert.Error(t, f.Submit(ctx))
	state := f.State()
	assert.Empty(t, state.Results)
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD", state.Message)

	src.filterErr = errors.New("connection reset")
	assert.Error(t, f.Submit(ctx))
	assert.Equal(t, models.MessageFilterFetchFailed, f.State().Message)
}

func TestUnauthorizedIsReturned(t *testing.T) {
	src := newFakeSource()
	f := newFilter(src)
	ctx := context.Background()

	require.NoError(t, f.SelectDate(ctx, apitest.Day))
	require.NoError(t, f.SelectAirport("CDG"))

	src.filterErr = apiclient.NewEndpointError(apiclient.EndpointFilteredTurnarounds, http.StatusUnauthorized, "", apiclient.ErrUnauthorized)
	assert.True(t, apiclient.IsUnauthorized(f.Submit(ctx)))

	src.airportErr = apiclient.NewEndpointError(apiclient.EndpointAvailableAirports, http.StatusUnauthorized, "", apiclient.ErrUnauthorized)
	assert.True(t, apiclient.IsUnauthorized(f.SelectDate(ctx, "2024-01-16")))
}

func TestAirportFetchFailureIsSoft(t *testing.T) {
	src := newFakeSource()
	src.airportErr = errors.New("timeout")
	f := newFilter(src)

	require.NoError(t, f.SelectDate(context.Background(), apitest.Day))

	state := f.State()
	assert.Empty(t, state.AvailableAirports)
	assert.Empty(t, state.Message)
	assert.Contains(t, state.Warnings, models.WarningNoAirportsOnDate)
}

func TestDateAvailabilityIsFlaggedNotBlocked(t *testing.T) {
	src := newFakeSource()
	f := newFilter(src)

	require.NoError(t, f.SelectDate(context.Background(), "2023-12-25"))

	state := f.State()
	assert.Equal(t, "2023-12-25", state.Date)
	assert.False(t, state.DateAvailable)
	assert.Contains(t, state.Warnings, models.WarningNoFlightsOnDate)
	assert.Equal(t, "2024-01-14", state.MinDate)
	assert.Equal(t, "2024-01-16", state.MaxDate)
	assert.Equal(t, 1, src.calls("2023-12-25"))

	assert.True(t, f.IsDateAvailable(apitest.Day))
	assert.False(t, f.IsDateAvailable("2023-12-25"))
}

func TestSelectDateRejectsMalformedDate(t *testing.T) {
	src := newFakeSource()
	f := newFilter(src)

	err := f.SelectDate(context.Background(), "15/01/2024")
	assert.ErrorIs(t, err, models.ErrInvalidDate)
	assert.Equal(t, models.ErrInvalidDate.Error(), f.State().Message)
	assert.Empty(t, src.airportCalls)
}
