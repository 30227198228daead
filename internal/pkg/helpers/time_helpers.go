package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// ClockLayout is the textual form of a time-of-day selector value.
	ClockLayout = "15:04"
	// DateLayout is the textual form of an exam date selector value.
	DateLayout = "2006-01-02"
)

// ParseClock validates a "HH:mm" time-of-day string and returns it in
// normalized form, so "9:05" and "09:05" compare equal as exam keys.
func ParseClock(value string) (string, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(value))
	if err != nil {
		// A second chance for single-digit hours, which "15:04" rejects.
		t, err = time.Parse("15:4", strings.TrimSpace(value))
		if err != nil {
			return "", fmt.Errorf("invalid time %q, expected HH:mm (e.g. 08:40)", value)
		}
	}
	return t.Format(ClockLayout), nil
}

// ParseDate validates a "yyyy-MM-dd" date string.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-MM-dd (e.g. 2025-01-01)", value)
	}
	return d, nil
}

// ParseTimeRange splits a combined "HH:mm ~ HH:mm" range into its normalized
// start and end values.
func ParseTimeRange(value string) (start, end string, err error) {
	parts := strings.Split(value, "~")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid time range %q, expected HH:mm ~ HH:mm", value)
	}
	if start, err = ParseClock(parts[0]); err != nil {
		return "", "", err
	}
	if end, err = ParseClock(parts[1]); err != nil {
		return "", "", err
	}
	return start, end, nil
}

// FormatDate renders a date in the selector form.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}
