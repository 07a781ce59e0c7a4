// Package time contains date helpers shared by the validator and the change processor
package time

import (
	"strings"
	"time"
)

// DateLayout is the compact calendar date used in registration payloads (e.g. 20240115)
const DateLayout = "20060102"

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// ParseDate parses a YYYYMMDD date in UTC
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// WeeksBetween returns whole weeks elapsed from since to now, floor(days/7).
// Negative spans are returned as-is so callers can range check them
func WeeksBetween(since, now time.Time) int {
	days := int(now.Sub(since).Hours() / 24)
	if days < 0 {
		return -((-days + 6) / 7)
	}
	return days / 7
}

// WeeksSinceDate parses a YYYYMMDD date and returns WeeksBetween(date, now)
func WeeksSinceDate(s string, now time.Time) (int, error) {
	d, err := ParseDate(s)
	if err != nil {
		return 0, err
	}
	return WeeksBetween(d, now), nil
}

// Clock returns the current time; services take one so tests can pin "now"
type Clock func() time.Time

// Now returns the current UTC time, or the system clock if c is nil
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
