package duration

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrNegativeDuration = errors.New("duration: end precedes start")
	ErrInvalidDuration  = errors.New("duration: value is not a finite number")
)

// Hours returns the elapsed time between start and end in fractional hours.
func Hours(start, end time.Time) (float64, error) {
	elapsed := end.Sub(start)
	if elapsed < 0 {
		return 0, fmt.Errorf("%w: %s before %s", ErrNegativeDuration, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return elapsed.Hours(), nil
}

// FormatHours renders fractional hours as "{h}h {m}m". Minutes that round up to
// 60 carry into the hour.
func FormatHours(hours float64) (string, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return "", ErrInvalidDuration
	}
	if hours < 0 {
		return "", ErrNegativeDuration
	}

	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m >= 60 {
		h++
		m -= 60
	}

	return fmt.Sprintf("%.0fh %.0fm", h, m), nil
}

// Between formats the elapsed time from start to end.
func Between(start, end time.Time) (string, error) {
	hours, err := Hours(start, end)
	if err != nil {
		return "", err
	}
	return FormatHours(hours)
}
