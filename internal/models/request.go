package models

import "strings"

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return ErrMissingUsername
	}
	if r.Password == "" {
		return ErrMissingPassword
	}
	return nil
}

type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Email    string `json:"email" form:"email"`
}

func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	if r.Username == "" {
		return ErrMissingUsername
	}
	if r.Password == "" {
		return ErrMissingPassword
	}
	if r.Email == "" {
		return ErrMissingEmail
	}
	return nil
}

type DateSelection struct {
	Date string `json:"date" form:"date" query:"date"`
}

type AirportSelection struct {
	AirportCode string `json:"airport_code" form:"airport_code"`
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingUsername     ValidationError = "username is required"
	ErrMissingPassword     ValidationError = "password is required"
	ErrMissingEmail        ValidationError = "email is required"
	ErrMissingFilterInput  ValidationError = "Both date and airport are required"
	ErrInvalidDate         ValidationError = "Invalid date format. Use YYYY-MM-DD"
	ErrAirportNotAvailable ValidationError = "Airport is not available for this date"
	ErrMissingAccessToken  ValidationError = "login response carried no access token"
)
