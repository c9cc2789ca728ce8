// Package mapview projects the day's flights onto map geometry: a straight path
// between the two airports and a label anchor at its midpoint.
package mapview

import (
	"math"
	"slices"
	"time"

	geo "github.com/paulmach/go.geo"

	"github.com/dharmasatrya/flightops/internal/joiner"
	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/timezone"
)

// DefaultCenter is roughly the middle of metropolitan France.
var DefaultCenter = LatLng{Lat: 46.2276, Lng: 2.2137}

const DefaultZoom = 6

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p LatLng) point() *geo.Point {
	return geo.NewPoint(p.Lng, p.Lat)
}

func fromPoint(p *geo.Point) LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lng()}
}

type Marker struct {
	AirportID int    `json:"airport_id"`
	Name      string `json:"name"`
	IATACode  string `json:"iata_code"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Position  LatLng `json:"position"`
}

type FlightPath struct {
	FlightID           int       `json:"flight_id"`
	Flight             string    `json:"flight"`
	Airline            string    `json:"airline"`
	From               string    `json:"from"`
	To                 string    `json:"to"`
	Path               [2]LatLng `json:"path"`
	Midpoint           LatLng    `json:"midpoint"`
	DepartureTime      string    `json:"departure_time"`
	ArrivalTime        string    `json:"arrival_time"`
	ScheduledDeparture string    `json:"scheduled_departure"`
	ScheduledArrival   string    `json:"scheduled_arrival"`
	DistanceKM         float64   `json:"distance_km"`
}

type View struct {
	Date           string       `json:"date"`
	DateAvailable  bool         `json:"date_available"`
	MinDate        string       `json:"min_date,omitempty"`
	MaxDate        string       `json:"max_date,omitempty"`
	AvailableDates []string     `json:"available_dates"`
	Center         LatLng       `json:"center"`
	Zoom           int          `json:"zoom"`
	Markers        []Marker     `json:"markers"`
	Paths          []FlightPath `json:"paths"`
}

// Midpoint is the planar mean of the two endpoints. It is not the great-circle
// midpoint; at regional zoom levels the difference is not visible.
func Midpoint(path [2]LatLng) LatLng {
	return fromPoint(geo.NewLine(path[0].point(), path[1].point()).Midpoint())
}

// PathFor returns the two endpoints of a resolved flight. ok is false when either
// airport has no coordinates.
func PathFor(r joiner.ResolvedFlight) (path [2]LatLng, ok bool) {
	depLat, depLon, ok := r.Departure.Coordinates()
	if !ok {
		return path, false
	}
	arrLat, arrLon, ok := r.Arrival.Coordinates()
	if !ok {
		return path, false
	}
	return [2]LatLng{{Lat: depLat, Lng: depLon}, {Lat: arrLat, Lng: arrLon}}, true
}

// Project keeps the flights whose scheduled departure falls on date in the
// index's zone and whose airline and airports all resolve with coordinates.
func Project(flights []models.Flight, ix *joiner.Index, date string) []FlightPath {
	loc := ix.Location()
	paths := make([]FlightPath, 0)

	for _, f := range flights {
		if timezone.LocalDate(f.ScheduledDeparture.Time, loc) != date {
			continue
		}
		r, ok := ix.ResolveFlight(f)
		if !ok {
			continue
		}
		path, ok := PathFor(r)
		if !ok {
			continue
		}

		distance := path[0].point().GeoDistanceFrom(path[1].point(), true) / 1000
		paths = append(paths, FlightPath{
			FlightID:           f.ID,
			Flight:             r.Label(),
			Airline:            r.Airline.Name,
			From:               r.Departure.IATACode,
			To:                 r.Arrival.IATACode,
			Path:               path,
			Midpoint:           Midpoint(path),
			DepartureTime:      timezone.FormatLocal(f.ScheduledDeparture.Time, loc, timezone.ClockLayout),
			ArrivalTime:        timezone.FormatLocal(f.ScheduledArrival.Time, loc, timezone.ClockLayout),
			ScheduledDeparture: timezone.FormatLocal(f.ScheduledDeparture.Time, loc, timezone.DisplayLayout),
			ScheduledArrival:   timezone.FormatLocal(f.ScheduledArrival.Time, loc, timezone.DisplayLayout),
			DistanceKM:         math.Round(distance*10) / 10,
		})
	}

	return paths
}

// Markers places every airport that has coordinates, regardless of date.
func Markers(airports []models.Airport) []Marker {
	markers := make([]Marker, 0, len(airports))
	for _, a := range airports {
		lat, lon, ok := a.Coordinates()
		if !ok {
			continue
		}
		markers = append(markers, Marker{
			AirportID: a.ID,
			Name:      a.Name,
			IATACode:  a.IATACode,
			City:      a.City,
			Country:   a.Country,
			Position:  LatLng{Lat: lat, Lng: lon},
		})
	}
	return markers
}

// NewView assembles the map screen for date. An empty date means today in the
// index's zone.
func NewView(airports []models.Airport, flights []models.Flight, ix *joiner.Index, availableDates []string, date string) View {
	if date == "" {
		date = timezone.LocalDate(time.Now(), ix.Location())
	}

	v := View{
		Date:           date,
		DateAvailable:  slices.Contains(availableDates, date),
		AvailableDates: slices.Clone(availableDates),
		Center:         DefaultCenter,
		Zoom:           DefaultZoom,
		Markers:        Markers(airports),
		Paths:          Project(flights, ix, date),
	}
	if v.AvailableDates == nil {
		v.AvailableDates = []string{}
	}
	if n := len(availableDates); n > 0 {
		v.MinDate = availableDates[0]
		v.MaxDate = availableDates[n-1]
	}
	return v
}
