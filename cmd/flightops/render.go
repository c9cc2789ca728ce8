package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/dharmasatrya/flightops/internal/mapview"
	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/ranking"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
)

// table writes aligned columns. Cells stay uncoloured so tabwriter can measure
// them.
func table(w io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	tw.Flush()
}

func title(w io.Writer, s string, n int) {
	fmt.Fprintln(w)
	titleColor.Fprintf(w, "%s (%d)\n", s, n)
}

func printFlights(w io.Writer, flights []models.FlightRow) {
	title(w, "Flights", len(flights))
	rows := make([][]string, 0, len(flights))
	for _, f := range flights {
		rows = append(rows, []string{f.Flight, f.Airline, f.From, f.To, f.ScheduledDeparture, f.ScheduledArrival, f.Status})
	}
	table(w, []string{"FLIGHT", "AIRLINE", "FROM", "TO", "DEPARTURE", "ARRIVAL", "STATUS"}, rows)
}

func printTurnarounds(w io.Writer, heading string, turnarounds []models.TurnaroundRow) {
	title(w, heading, len(turnarounds))
	rows := make([][]string, 0, len(turnarounds))
	for _, t := range turnarounds {
		rows = append(rows, []string{t.Airport, t.ArrivalFlight, t.DepartureFlight, t.ScheduledDuration, t.Status})
	}
	table(w, []string{"AIRPORT", "ARRIVAL", "DEPARTURE", "DURATION", "STATUS"}, rows)
}

func printStats(w io.Writer, stats []models.AirlineTurnaroundStats) {
	rows := ranking.StatRows(stats)
	title(w, "Average turnaround by airline", len(rows))

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		rank := "-"
		if r.Rank > 0 {
			rank = fmt.Sprint(r.Rank)
		}
		cells = append(cells, []string{rank, r.Airline, r.AverageDuration})
	}
	table(w, []string{"RANK", "AIRLINE", "AVERAGE"}, cells)

	if fastest, ok := ranking.Fastest(rows); ok {
		successColor.Fprintf(w, "Fastest: %s (%s)\n", fastest.Airline, fastest.AverageDuration)
	}
}

func printFilter(w io.Writer, state models.FilterState) {
	titleColor.Fprintf(w, "\nFilter %s %s\n", state.Date, state.AirportCode)
	if state.MinDate != "" {
		fmt.Fprintf(w, "Dates with data: %s to %s\n", state.MinDate, state.MaxDate)
	}
	for _, warning := range state.Warnings {
		warningColor.Fprintln(w, warning)
	}

	codes := make([]string, 0, len(state.AvailableAirports))
	for _, a := range state.AvailableAirports {
		codes = append(codes, a.Label)
	}
	if len(codes) > 0 {
		fmt.Fprintf(w, "Airports: %s\n", strings.Join(codes, ", "))
	}

	if state.Message != "" {
		errorColor.Fprintln(w, state.Message)
		return
	}
	if state.AirportCode != "" {
		printTurnarounds(w, "Results", state.Results)
	}
}

func printMap(w io.Writer, v mapview.View) {
	titleColor.Fprintf(w, "\nMap %s, centre %.4f,%.4f zoom %d\n", v.Date, v.Center.Lat, v.Center.Lng, v.Zoom)
	if !v.DateAvailable {
		warningColor.Fprintln(w, models.WarningNoFlightsOnDate)
	}

	title(w, "Airports", len(v.Markers))
	markers := make([][]string, 0, len(v.Markers))
	for _, m := range v.Markers {
		markers = append(markers, []string{m.IATACode, m.Name, m.City, fmt.Sprintf("%.4f", m.Position.Lat), fmt.Sprintf("%.4f", m.Position.Lng)})
	}
	table(w, []string{"CODE", "NAME", "CITY", "LAT", "LNG"}, markers)

	title(w, "Flight paths", len(v.Paths))
	paths := make([][]string, 0, len(v.Paths))
	for _, p := range v.Paths {
		paths = append(paths, []string{
			p.Flight, p.Airline, p.From + "-" + p.To,
			p.DepartureTime + " - " + p.ArrivalTime,
			fmt.Sprintf("%.0f km", p.DistanceKM),
			fmt.Sprintf("%.4f,%.4f", p.Midpoint.Lat, p.Midpoint.Lng),
		})
	}
	table(w, []string{"FLIGHT", "AIRLINE", "ROUTE", "TIMES", "DISTANCE", "LABEL AT"}, paths)
}
