package apiclient

import (
	"errors"
	"strconv"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrStatus       = errors.New("unexpected status")
)

type EndpointError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *EndpointError) Error() string {
	msg := e.Endpoint + ": "
	if e.StatusCode != 0 {
		msg += "status " + strconv.Itoa(e.StatusCode) + ": "
	}
	if e.Message != "" {
		return msg + e.Message
	}
	return msg + e.Err.Error()
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}

func NewEndpointError(endpoint string, status int, message string, err error) *EndpointError {
	return &EndpointError{
		Endpoint:   endpoint,
		StatusCode: status,
		Message:    message,
		Err:        err,
	}
}

// UserMessage returns the server-provided error text, or fallback when the server
// sent none.
func UserMessage(err error, fallback string) string {
	var endpointErr *EndpointError
	if errors.As(err, &endpointErr) && endpointErr.Message != "" {
		return endpointErr.Message
	}
	return fallback
}
