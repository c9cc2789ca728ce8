package timezone

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DisplayLayout and ClockLayout are the viewer-facing renderings of a timestamp.
const (
	DisplayLayout = "2006-01-02 15:04"
	ClockLayout   = "15:04"
)

// LoadViewerLocation resolves the zone the dashboard is viewed in. Empty and
// "Local" mean the host zone; fixed offsets like "UTC+2" are accepted too.
func LoadViewerLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	switch strings.ToUpper(name) {
	case "", "LOCAL":
		return time.Local, nil
	case "UTC", "Z":
		return time.UTC, nil
	}

	if strings.HasPrefix(strings.ToUpper(name), "UTC") && len(name) > 3 {
		if offset, err := parseOffset(name[3:]); err == nil {
			return time.FixedZone(strings.ToUpper(name), offset), nil
		}
	}

	return time.LoadLocation(name)
}

func parseOffset(s string) (int, error) {
	formats := []string{"-07:00", "-0700", "-07"}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			_, offset := t.Zone()
			return offset, nil
		}
	}
	return 0, &time.ParseError{Value: s, Message: "unable to parse offset"}
}

// ParseTimestamp parses an API timestamp. Values without an offset are read in
// fallback.
func ParseTimestamp(timeStr string, fallback *time.Location) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999-0700", // Without colon
		"2006-01-02T15:04:05-07",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	if fallback == nil {
		fallback = time.UTC
	}
	naiveFormats := []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
	for _, format := range naiveFormats {
		if t, err := time.ParseInLocation(format, timeStr, fallback); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   timeStr,
		Message: "unable to parse time string",
	}
}

// ParseDate validates a calendar date in YYYY-MM-DD form and returns it normalised.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// LocalDate truncates t to its calendar day as seen from loc.
func LocalDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

func Today(loc *time.Location) string {
	return LocalDate(time.Now(), loc)
}

func FormatLocal(t time.Time, loc *time.Location, layout string) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(layout)
}
