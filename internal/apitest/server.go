// Package apitest runs an in-process stand-in for the flight API so handlers and
// clients can be exercised end to end.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/timezone"
)

const (
	Username    = "ops"
	Password    = "s3cret-pass"
	AccessToken = "access-token"
)

type Fixtures struct {
	Airlines       []models.Airline
	Airports       []models.Airport
	Flights        []models.Flight
	Turnarounds    []models.Turnaround
	Stats          []models.AirlineTurnaroundStats
	AvailableDates []string
	// AirportsByDate overrides the airports answered for a date; when nil the set
	// is derived from turnarounds starting that day.
	AirportsByDate map[string][]models.Airport
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	fixtures Fixtures
	token    string
	failures map[string]int
	requests map[string]int
	queries  map[string][]string
}

func NewServer(fixtures Fixtures) *Server {
	s := &Server{
		fixtures: fixtures,
		token:    AccessToken,
		failures: make(map[string]int),
		requests: make(map[string]int),
		queries:  make(map[string][]string),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(s.record)

	api := e.Group("/api")
	api.POST("/auth/login/", s.login)
	api.POST("/auth/register/", s.register)

	protected := api.Group("", s.requireToken)
	protected.GET("/flights/", s.list(func(f Fixtures) any { return f.Flights }))
	protected.GET("/turnarounds/", s.list(func(f Fixtures) any { return f.Turnarounds }))
	protected.GET("/airlines/", s.list(func(f Fixtures) any { return f.Airlines }))
	protected.GET("/airports/", s.list(func(f Fixtures) any { return f.Airports }))
	protected.GET("/airlines/turnaround_stats/", s.list(func(f Fixtures) any { return f.Stats }))
	protected.GET("/turnarounds/available_dates/", s.list(func(f Fixtures) any { return f.AvailableDates }))
	protected.GET("/turnarounds/by_date_and_airport/", s.byDateAndAirport)
	protected.GET("/airports/available_airports/", s.availableAirports)

	s.Server = httptest.NewServer(e)
	return s
}

// BaseURL is what an apiclient.Config should point at.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Fail makes every request to path answer status until cleared with status 0.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = status
}

// RevokeToken makes every protected endpoint answer 401.
func (s *Server) RevokeToken() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

// Queries returns the raw query strings seen for path, oldest first.
func (s *Server) Queries(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries[path]...)
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := strings.TrimPrefix(c.Request().URL.Path, "/api")

		s.mu.Lock()
		s.requests[path]++
		s.queries[path] = append(s.queries[path], c.Request().URL.RawQuery)
		status := s.failures[path]
		s.mu.Unlock()

		if status != 0 {
			return c.JSON(status, map[string]string{"error": http.StatusText(status)})
		}
		return next(c)
	}
}

func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		token := s.token
		s.mu.Unlock()

		if token == "" || c.Request().Header.Get("Authorization") != "Bearer "+token {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
			})
		}
		return next(c)
	}
}

func (s *Server) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if req.Username != Username || req.Password != Password {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}
	return c.JSON(http.StatusOK, models.AuthResponse{
		Tokens: models.Tokens{Access: AccessToken, Refresh: "refresh-token"},
		User:   &models.User{ID: 1, Username: Username, Email: "ops@example.com"},
	})
}

func (s *Server) register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Ensure this field has at least 8 characters."})
	}
	if req.Username == Username {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "A user with that username already exists."})
	}
	return c.JSON(http.StatusCreated, models.AuthResponse{
		Tokens: models.Tokens{Access: AccessToken, Refresh: "refresh-token"},
		User:   &models.User{ID: 2, Username: req.Username, Email: req.Email},
	})
}

func (s *Server) list(pick func(Fixtures) any) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		body := pick(s.fixtures)
		s.mu.Unlock()
		return c.JSON(http.StatusOK, body)
	}
}

func (s *Server) byDateAndAirport(c echo.Context) error {
	date := c.QueryParam("date")
	code := c.QueryParam("airport_code")
	if code == "" {
		code = c.QueryParam("airport")
	}
	if date == "" || code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Date and airport parameters are required"})
	}
	if _, err := time.Parse(timezone.DateLayout, date); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid date format. Use YYYY-MM-DD"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	airportIDs := make(map[int]bool)
	for _, a := range s.fixtures.Airports {
		if a.IATACode == code {
			airportIDs[a.ID] = true
		}
	}

	out := make([]models.Turnaround, 0)
	for _, t := range s.fixtures.Turnarounds {
		if airportIDs[t.Airport] && timezone.LocalDate(t.ScheduledStart.Time, time.UTC) == date {
			out = append(out, t)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) availableAirports(c echo.Context) error {
	date := c.QueryParam("date")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fixtures.AirportsByDate != nil {
		out := s.fixtures.AirportsByDate[date]
		if out == nil {
			out = []models.Airport{}
		}
		return c.JSON(http.StatusOK, out)
	}

	seen := make(map[int]bool)
	for _, t := range s.fixtures.Turnarounds {
		if timezone.LocalDate(t.ScheduledStart.Time, time.UTC) == date {
			seen[t.Airport] = true
		}
	}
	out := make([]models.Airport, 0, len(seen))
	for _, a := range s.fixtures.Airports {
		if seen[a.ID] {
			out = append(out, a)
		}
	}
	return c.JSON(http.StatusOK, out)
}
