package util

import "time"

// NowUTC exposes time.Now in UTC for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Timestamp renders t in the RFC 3339 form persisted in vector metadata.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
