// Package apiclient talks to the flight-operations REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/internal/ratelimit"
	"github.com/dharmasatrya/flightops/internal/session"
)

const DefaultBaseURL = "http://localhost:8000/api"

// Endpoint names, also used as rate limiter keys.
const (
	EndpointLogin               = "login"
	EndpointRegister            = "register"
	EndpointFlights             = "flights"
	EndpointTurnarounds         = "turnarounds"
	EndpointAirlines            = "airlines"
	EndpointAirports            = "airports"
	EndpointAirlineStats        = "airline_stats"
	EndpointAvailableDates      = "available_dates"
	EndpointFilteredTurnarounds = "turnarounds_by_date_and_airport"
	EndpointAvailableAirports   = "available_airports"
)

var endpointPaths = map[string]string{
	EndpointLogin:               "/auth/login/",
	EndpointRegister:            "/auth/register/",
	EndpointFlights:             "/flights/",
	EndpointTurnarounds:         "/turnarounds/",
	EndpointAirlines:            "/airlines/",
	EndpointAirports:            "/airports/",
	EndpointAirlineStats:        "/airlines/turnaround_stats/",
	EndpointAvailableDates:      "/turnarounds/available_dates/",
	EndpointFilteredTurnarounds: "/turnarounds/by_date_and_airport/",
	EndpointAvailableAirports:   "/airports/available_airports/",
}

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	RateLimiter *ratelimit.EndpointLimiter
	HTTPClient  *http.Client
}

type Client struct {
	baseURL string
	http    *http.Client
	limiter *ratelimit.EndpointLimiter
}

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		limiter: cfg.RateLimiter,
	}
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, EndpointLogin, nil, nil, req, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	if resp.Tokens.Access == "" {
		return models.AuthResponse{}, NewEndpointError(EndpointLogin, http.StatusOK, "", models.ErrMissingAccessToken)
	}
	return resp, nil
}

// Register creates an account. Depending on the server the response may or may
// not carry tokens.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, EndpointRegister, nil, nil, req, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	return resp, nil
}

func (c *Client) ListFlights(ctx context.Context, s *session.Session) ([]models.Flight, error) {
	var out []models.Flight
	err := c.get(ctx, s, EndpointFlights, nil, &out)
	return out, err
}

func (c *Client) ListTurnarounds(ctx context.Context, s *session.Session) ([]models.Turnaround, error) {
	var out []models.Turnaround
	err := c.get(ctx, s, EndpointTurnarounds, nil, &out)
	return out, err
}

func (c *Client) ListAirlines(ctx context.Context, s *session.Session) ([]models.Airline, error) {
	var out []models.Airline
	err := c.get(ctx, s, EndpointAirlines, nil, &out)
	return out, err
}

func (c *Client) ListAirports(ctx context.Context, s *session.Session) ([]models.Airport, error) {
	var out []models.Airport
	err := c.get(ctx, s, EndpointAirports, nil, &out)
	return out, err
}

func (c *Client) AirlineStats(ctx context.Context, s *session.Session) ([]models.AirlineTurnaroundStats, error) {
	var out []models.AirlineTurnaroundStats
	err := c.get(ctx, s, EndpointAirlineStats, nil, &out)
	return out, err
}

func (c *Client) AvailableDates(ctx context.Context, s *session.Session) ([]string, error) {
	var out []string
	err := c.get(ctx, s, EndpointAvailableDates, nil, &out)
	return out, err
}

// TurnaroundsByDateAndAirport sends the code as both airport_code and airport;
// deployed API versions disagree on the parameter name.
func (c *Client) TurnaroundsByDateAndAirport(ctx context.Context, s *session.Session, date, airportCode string) ([]models.Turnaround, error) {
	query := url.Values{}
	query.Set("date", date)
	query.Set("airport_code", airportCode)
	query.Set("airport", airportCode)

	var out []models.Turnaround
	err := c.get(ctx, s, EndpointFilteredTurnarounds, query, &out)
	return out, err
}

func (c *Client) AvailableAirports(ctx context.Context, s *session.Session, date string) ([]models.Airport, error) {
	query := url.Values{}
	query.Set("date", date)

	var out []models.Airport
	err := c.get(ctx, s, EndpointAvailableAirports, query, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, s *session.Session, endpoint string, query url.Values, out any) error {
	if !s.Valid() {
		return NewEndpointError(endpoint, 0, "", session.ErrNoSession)
	}
	return c.do(ctx, http.MethodGet, endpoint, s, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, s *session.Session, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return NewEndpointError(endpoint, 0, "", err)
		}
	}

	target := c.baseURL + endpointPaths[endpoint]
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return NewEndpointError(endpoint, 0, "", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return NewEndpointError(endpoint, 0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return NewEndpointError(endpoint, 0, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return NewEndpointError(endpoint, resp.StatusCode, "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cause := ErrStatus
		if resp.StatusCode == http.StatusUnauthorized {
			cause = ErrUnauthorized
		}
		return NewEndpointError(endpoint, resp.StatusCode, serverMessage(data), cause)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return NewEndpointError(endpoint, resp.StatusCode, "", fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// serverMessage extracts the API's {"error": "..."} or {"detail": "..."} text.
func serverMessage(data []byte) string {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Detail
}

// IsUnauthorized reports whether err means the session's token was rejected or
// is missing.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, session.ErrNoSession)
}
