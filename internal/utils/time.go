package utils

import (
	"fmt"
	"time"

	"github.com/ksakurai/memoplan/internal/constants"
)

// ParseTimeToMinutes parses a clock time string (HH:MM) and returns the
// number of minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	t, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", timeStr, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinutes renders minutes from midnight as HH:MM.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a date string (YYYY-MM-DD) at midnight local time.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	return t, nil
}

// DaysBetween returns the number of whole calendar days from a to b
// (negative when b is before a). Clock times are ignored.
func DaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := time.Parse(constants.TimeFormat, timeStr)
	return err == nil
}
