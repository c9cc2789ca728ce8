package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/dharmasatrya/flightops/internal/timezone"
)

// Timestamp accepts the timestamp shapes the flight API emits: RFC 3339 with or
// without fractional seconds, and naive values which are read as UTC.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := timezone.ParseTimestamp(s, time.UTC)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}

type Airline struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	IATACode string `json:"iata_code"`
}

type Airport struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	IATACode  string   `json:"iata_code"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Coordinates reports the airport position; ok is false unless both values are set.
func (a Airport) Coordinates() (lat, lon float64, ok bool) {
	if a.Latitude == nil || a.Longitude == nil {
		return 0, 0, false
	}
	return *a.Latitude, *a.Longitude, true
}

// Label renders "CDG (Paris)".
func (a Airport) Label() string {
	return a.IATACode + " (" + a.City + ")"
}

type Flight struct {
	ID                 int        `json:"id"`
	FlightNumber       string     `json:"flight_number"`
	Airline            int        `json:"airline"`
	DepartureAirport   int        `json:"departure_airport"`
	ArrivalAirport     int        `json:"arrival_airport"`
	ScheduledDeparture Timestamp  `json:"scheduled_departure"`
	ScheduledArrival   Timestamp  `json:"scheduled_arrival"`
	ActualDeparture    *Timestamp `json:"actual_departure"`
	ActualArrival      *Timestamp `json:"actual_arrival"`
}

type Turnaround struct {
	ID              int        `json:"id"`
	ArrivalFlight   int        `json:"arrival_flight"`
	DepartureFlight int        `json:"departure_flight"`
	Airport         int        `json:"airport"`
	ScheduledStart  Timestamp  `json:"scheduled_start"`
	ActualStart     *Timestamp `json:"actual_start"`
	ScheduledEnd    Timestamp  `json:"scheduled_end"`
	ActualEnd       *Timestamp `json:"actual_end"`
}

// AirlineTurnaroundStats carries the average turnaround duration in hours.
type AirlineTurnaroundStats struct {
	Airline         string  `json:"airline"`
	AverageDuration float64 `json:"average_duration"`
}
