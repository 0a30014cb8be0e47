package util

import (
	"strconv"
	"time"
)

// unixMillisThreshold disambiguates integer timestamps: values above it are
// interpreted as milliseconds, values at or below as seconds.
const unixMillisThreshold = int64(10_000_000_000)

// ParseTime tries RFC3339, RFC3339Nano, the zone-less upstream variant, and
// unix seconds/milliseconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	// The market data API reports dates without a zone suffix; they are UTC.
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return FromUnixAny(ts), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// FromUnixAny converts an integer unix timestamp that may be expressed in
// seconds or milliseconds into a time.Time.
func FromUnixAny(ts int64) time.Time {
	if ts > unixMillisThreshold {
		return time.UnixMilli(ts)
	}
	return time.Unix(ts, 0)
}
