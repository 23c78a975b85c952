package common

import "time"

// DateLayout is the canonical format for date natural keys (daily challenge
// dates, weekly week-start keys).
const DateLayout = "2006-01-02"

// TruncateToDateUTC truncates the given time to midnight (00:00:00) in UTC.
//
// Example:
//   - Input: 2026-08-17 14:23:45 UTC
//   - Output: 2026-08-17 00:00:00 UTC
//
// Usage: day-bucket boundaries are inclusive at this instant and exclusive
// at the next midnight.
func TruncateToDateUTC(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// DateString formats a time as its UTC calendar date, e.g. "2026-08-17".
func DateString(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date string into a UTC midnight instant.
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, time.UTC)
}

// DayStartUnix returns the epoch seconds of UTC midnight for the given time.
func DayStartUnix(t time.Time) int64 {
	return TruncateToDateUTC(t).Unix()
}

// WeekStart returns UTC midnight of the most recent Sunday at or before the
// given time. A Sunday maps to itself.
func WeekStart(t time.Time) time.Time {
	day := TruncateToDateUTC(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekStartDate returns the week key for the given time, e.g. "2026-08-16".
func WeekStartDate(t time.Time) string {
	return WeekStart(t).Format(DateLayout)
}

// DaysRemainingInWeek returns how many full calendar days of the week that
// contains t are still ahead. Today is already partly gone and does not
// count: a Sunday returns 6, the following Saturday returns 0.
func DaysRemainingInWeek(t time.Time) int {
	remaining := 6 - int(TruncateToDateUTC(t).Weekday())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AddDays returns the date string days calendar days after the given
// YYYY-MM-DD date. Negative values step backward.
func AddDays(date string, days int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, days).Format(DateLayout), nil
}
