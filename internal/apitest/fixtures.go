package apitest

import (
	"time"

	"github.com/dharmasatrya/flightops/internal/models"
)

// Day is the service day the default fixtures are built around.
const Day = "2024-01-15"

// Reference ids used by the default fixtures.
const (
	AirlineAF = 1
	AirlineU2 = 2

	AirportCDG = 10
	AirportORY = 11
	AirportNCE = 12
	AirportLYS = 13

	// AirportMissing is referenced by an orphan flight and never listed.
	AirportMissing = 99

	FlightAF100   = 100
	FlightAF101   = 101
	FlightU2200   = 200
	FlightU2201   = 201
	FlightOrphan  = 300
	FlightNextDay = 400

	// FlightMissing is referenced by a turnaround and never listed.
	FlightMissing = 555
)

func coord(v float64) *float64 {
	return &v
}

func at(hhmm string) models.Timestamp {
	return AtDate(Day, hhmm)
}

// AtDate builds a UTC timestamp from a date and a 15:04 clock value.
func AtDate(date, hhmm string) models.Timestamp {
	t, err := time.Parse("2006-01-02 15:04", date+" "+hhmm)
	if err != nil {
		panic(err)
	}
	return models.NewTimestamp(t)
}

func ptr(ts models.Timestamp) *models.Timestamp {
	return &ts
}

// DefaultFixtures describes a small French network on Day: two airlines, four
// airports, four resolvable flights, one flight pointing at an unknown airport and
// one flight on the following day. Turnaround 3 points at a flight that is never
// listed.
func DefaultFixtures() Fixtures {
	airports := []models.Airport{
		{ID: AirportCDG, Name: "Charles de Gaulle", IATACode: "CDG", City: "Paris", Country: "France", Latitude: coord(49.0097), Longitude: coord(2.5479)},
		{ID: AirportORY, Name: "Orly", IATACode: "ORY", City: "Paris", Country: "France", Latitude: coord(48.7262), Longitude: coord(2.3652)},
		{ID: AirportNCE, Name: "Nice Cote d'Azur", IATACode: "NCE", City: "Nice", Country: "France", Latitude: coord(43.6584), Longitude: coord(7.2159)},
		{ID: AirportLYS, Name: "Lyon Saint-Exupery", IATACode: "LYS", City: "Lyon", Country: "France"},
	}

	flights := []models.Flight{
		{ID: FlightAF100, FlightNumber: "100", Airline: AirlineAF, DepartureAirport: AirportNCE, ArrivalAirport: AirportCDG,
			ScheduledDeparture: at("07:00"), ScheduledArrival: at("08:30"), ActualDeparture: ptr(at("07:05"))},
		{ID: FlightAF101, FlightNumber: "101", Airline: AirlineAF, DepartureAirport: AirportCDG, ArrivalAirport: AirportNCE,
			ScheduledDeparture: at("09:45"), ScheduledArrival: at("11:15")},
		{ID: FlightU2200, FlightNumber: "200", Airline: AirlineU2, DepartureAirport: AirportNCE, ArrivalAirport: AirportORY,
			ScheduledDeparture: at("12:00"), ScheduledArrival: at("13:20")},
		{ID: FlightU2201, FlightNumber: "201", Airline: AirlineU2, DepartureAirport: AirportORY, ArrivalAirport: AirportLYS,
			ScheduledDeparture: at("14:00"), ScheduledArrival: at("15:05")},
		{ID: FlightOrphan, FlightNumber: "999", Airline: AirlineAF, DepartureAirport: AirportMissing, ArrivalAirport: AirportCDG,
			ScheduledDeparture: at("16:00"), ScheduledArrival: at("17:00")},
		{ID: FlightNextDay, FlightNumber: "102", Airline: AirlineAF, DepartureAirport: AirportCDG, ArrivalAirport: AirportNCE,
			ScheduledDeparture: AtDate("2024-01-16", "09:45"), ScheduledArrival: AtDate("2024-01-16", "11:15")},
	}

	turnarounds := []models.Turnaround{
		{ID: 1, ArrivalFlight: FlightAF100, DepartureFlight: FlightAF101, Airport: AirportCDG,
			ScheduledStart: at("08:30"), ScheduledEnd: at("09:45"), ActualStart: ptr(at("08:40"))},
		{ID: 2, ArrivalFlight: FlightU2200, DepartureFlight: FlightU2201, Airport: AirportORY,
			ScheduledStart: at("13:20"), ScheduledEnd: at("14:00")},
		{ID: 3, ArrivalFlight: FlightOrphan, DepartureFlight: FlightMissing, Airport: AirportCDG,
			ScheduledStart: at("17:00"), ScheduledEnd: at("18:30")},
	}

	return Fixtures{
		Airlines: []models.Airline{
			{ID: AirlineAF, Name: "Air France", IATACode: "AF"},
			{ID: AirlineU2, Name: "easyJet", IATACode: "U2"},
		},
		Airports:    airports,
		Flights:     flights,
		Turnarounds: turnarounds,
		Stats: []models.AirlineTurnaroundStats{
			{Airline: "Air France", AverageDuration: 1.25},
			{Airline: "easyJet", AverageDuration: 0.6667},
		},
		AvailableDates: []string{"2024-01-14", Day, "2024-01-16"},
	}
}
