package models

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// AuthResponse is what the login and register endpoints answer with.
type AuthResponse struct {
	Tokens Tokens `json:"tokens"`
	User   *User  `json:"user,omitempty"`
}

type FlightRow struct {
	ID                 int    `json:"id"`
	Flight             string `json:"flight"`
	Airline            string `json:"airline"`
	From               string `json:"from"`
	To                 string `json:"to"`
	ScheduledDeparture string `json:"scheduled_departure"`
	ScheduledArrival   string `json:"scheduled_arrival"`
	Status             string `json:"status"`
}

type TurnaroundRow struct {
	ID                int    `json:"id"`
	Airport           string `json:"airport"`
	ArrivalFlight     string `json:"arrival_flight"`
	DepartureFlight   string `json:"departure_flight"`
	ScheduledDuration string `json:"scheduled_duration"`
	Status            string `json:"status"`
}

type StatRow struct {
	Airline         string `json:"airline"`
	AverageDuration string `json:"average_duration"`
	Rank            int    `json:"rank,omitempty"`
}

type AirportOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type FilterState struct {
	Date              string          `json:"date"`
	DateAvailable     bool            `json:"date_available"`
	MinDate           string          `json:"min_date,omitempty"`
	MaxDate           string          `json:"max_date,omitempty"`
	AirportCode       string          `json:"airport_code"`
	AvailableAirports []AirportOption `json:"available_airports"`
	CanSubmit         bool            `json:"can_submit"`
	Results           []TurnaroundRow `json:"results"`
	Message           string          `json:"message,omitempty"`
	Warnings          []string        `json:"warnings,omitempty"`
}

type DashboardView struct {
	User        string          `json:"user,omitempty"`
	Flights     []FlightRow     `json:"flights"`
	Turnarounds []TurnaroundRow `json:"turnarounds"`
	Stats       []StatRow       `json:"airline_stats"`
	Filter      FilterState     `json:"filter"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

const (
	StatusActive     = "Active"
	StatusScheduled  = "Scheduled"
	StatusInProgress = "In Progress"

	WarningNoFlightsOnDate  = "No flights on this date"
	WarningNoAirportsOnDate = "No airports available for this date"

	MessageFetchFailed        = "Failed to fetch data"
	MessageFilterFetchFailed  = "Failed to fetch filtered data"
	MessageLoginFailed        = "Login failed. Please try again."
	MessageRegistrationFailed = "Registration failed. Please try again."
	DurationUnavailable       = "n/a"
)
