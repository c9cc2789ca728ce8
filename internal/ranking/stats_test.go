package ranking

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dharmasatrya/flightops/internal/models"
)

func TestStatRows(t *testing.T) {
	stats := []models.AirlineTurnaroundStats{
		{Airline: "Air France", AverageDuration: 1.25},
		{Airline: "easyJet", AverageDuration: 0.5},
		{Airline: "Transavia", AverageDuration: 1.25},
		{Airline: "Broken", AverageDuration: -2},
		{Airline: "Unknown", AverageDuration: math.NaN()},
		{Airline: "Volotea", AverageDuration: 2},
	}

	want := []models.StatRow{
		{Airline: "Air France", AverageDuration: "1h 15m", Rank: 2},
		{Airline: "easyJet", AverageDuration: "0h 30m", Rank: 1},
		{Airline: "Transavia", AverageDuration: "1h 15m", Rank: 2},
		{Airline: "Broken", AverageDuration: models.DurationUnavailable},
		{Airline: "Unknown", AverageDuration: models.DurationUnavailable},
		{Airline: "Volotea", AverageDuration: "2h 0m", Rank: 4},
	}

	got := StatRows(stats)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("StatRows mismatch (-want +got):\n%s", diff)
	}

	fastest, ok := Fastest(got)
	if !ok || fastest.Airline != "easyJet" {
		t.Errorf("Fastest = %+v, %v; expected easyJet", fastest, ok)
	}
}

func TestStatRowsEmpty(t *testing.T) {
	got := StatRows(nil)
	if len(got) != 0 {
		t.Errorf("StatRows(nil) = %v; expected empty", got)
	}
	if _, ok := Fastest(got); ok {
		t.Errorf("Fastest on empty rows should report false")
	}
}
