package joiner

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightops/internal/apitest"
	"github.com/dharmasatrya/flightops/internal/models"
)

func defaultIndex(opts ...Option) (*Index, apitest.Fixtures) {
	fx := apitest.DefaultFixtures()
	opts = append([]Option{WithLocation(time.UTC)}, opts...)
	return NewIndex(fx.Airlines, fx.Airports, fx.Flights, opts...), fx
}

func TestFlightRowsDropUnresolved(t *testing.T) {
	ix, fx := defaultIndex()

	rows := ix.FlightRows(fx.Flights)

	want := []models.FlightRow{
		{ID: apitest.FlightAF100, Flight: "AF100", Airline: "Air France", From: "NCE (Nice)", To: "CDG (Paris)",
			ScheduledDeparture: "2024-01-15 07:00", ScheduledArrival: "2024-01-15 08:30", Status: models.StatusActive},
		{ID: apitest.FlightAF101, Flight: "AF101", Airline: "Air France", From: "CDG (Paris)", To: "NCE (Nice)",
			ScheduledDeparture: "2024-01-15 09:45", ScheduledArrival: "2024-01-15 11:15", Status: models.StatusScheduled},
		{ID: apitest.FlightU2200, Flight: "U2200", Airline: "easyJet", From: "NCE (Nice)", To: "ORY (Paris)",
			ScheduledDeparture: "2024-01-15 12:00", ScheduledArrival: "2024-01-15 13:20", Status: models.StatusScheduled},
		{ID: apitest.FlightU2201, Flight: "U2201", Airline: "easyJet", From: "ORY (Paris)", To: "LYS (Lyon)",
			ScheduledDeparture: "2024-01-15 14:00", ScheduledArrival: "2024-01-15 15:05", Status: models.StatusScheduled},
		{ID: apitest.FlightNextDay, Flight: "AF102", Airline: "Air France", From: "CDG (Paris)", To: "NCE (Nice)",
			ScheduledDeparture: "2024-01-16 09:45", ScheduledArrival: "2024-01-16 11:15", Status: models.StatusScheduled},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("FlightRows mismatch (-want +got):\n%s", diff)
	}
}

func TestFlightRowsRenderInViewerZone(t *testing.T) {
	ix, fx := defaultIndex(WithLocation(time.FixedZone("UTC+1", 3600)))

	rows := ix.FlightRows(fx.Flights[:1])
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-15 08:00", rows[0].ScheduledDeparture)
}

func TestTurnaroundRowsDropUnresolved(t *testing.T) {
	ix, fx := defaultIndex()

	rows := ix.TurnaroundRows(fx.Turnarounds)

	want := []models.TurnaroundRow{
		{ID: 1, Airport: "CDG (Paris)", ArrivalFlight: "AF100", DepartureFlight: "AF101",
			ScheduledDuration: "1h 15m", Status: models.StatusInProgress},
		{ID: 2, Airport: "ORY (Paris)", ArrivalFlight: "U2200", DepartureFlight: "U2201",
			ScheduledDuration: "0h 40m", Status: models.StatusScheduled},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("TurnaroundRows mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveFlightMissingReferences(t *testing.T) {
	ix, fx := defaultIndex()
	base := fx.Flights[0]

	tests := []struct {
		name   string
		mutate func(f *models.Flight)
	}{
		{"airline", func(f *models.Flight) { f.Airline = 77 }},
		{"departure airport", func(f *models.Flight) { f.DepartureAirport = apitest.AirportMissing }},
		{"arrival airport", func(f *models.Flight) { f.ArrivalAirport = apitest.AirportMissing }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			tt.mutate(&f)
			_, ok := ix.ResolveFlight(f)
			assert.False(t, ok)
			assert.Empty(t, ix.FlightRows([]models.Flight{f}))
		})
	}

	r, ok := ix.ResolveFlight(base)
	require.True(t, ok)
	assert.Equal(t, "AF100", r.Label())
}

func TestResolveTurnaroundNeedsFlightAirlines(t *testing.T) {
	fx := apitest.DefaultFixtures()
	// easyJet unknown: turnaround 2 can no longer label its flights.
	ix := NewIndex(fx.Airlines[:1], fx.Airports, fx.Flights, WithLocation(time.UTC))

	_, ok := ix.ResolveTurnaround(fx.Turnarounds[1])
	assert.False(t, ok)

	_, ok = ix.ResolveTurnaround(fx.Turnarounds[0])
	assert.True(t, ok)

	missingAirport := fx.Turnarounds[0]
	missingAirport.Airport = apitest.AirportMissing
	_, ok = ix.ResolveTurnaround(missingAirport)
	assert.False(t, ok)
}

func TestNewIndexLastWriteWins(t *testing.T) {
	ix := NewIndex([]models.Airline{
		{ID: 1, Name: "First", IATACode: "AA"},
		{ID: 1, Name: "Second", IATACode: "BB"},
	}, nil, nil)

	assert.Len(t, ix.Airlines, 1)
	assert.Equal(t, "Second", ix.Airlines[1].Name)
}

func TestNegativeWindowRendersUnavailable(t *testing.T) {
	ix, fx := defaultIndex()
	tr := fx.Turnarounds[0]
	tr.ScheduledStart, tr.ScheduledEnd = tr.ScheduledEnd, tr.ScheduledStart

	rows := ix.TurnaroundRows([]models.Turnaround{tr})
	require.Len(t, rows, 1)
	assert.Equal(t, models.DurationUnavailable, rows[0].ScheduledDuration)
}
