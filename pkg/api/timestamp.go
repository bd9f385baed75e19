package api

import (
	"fmt"
	"time"
)

// TimestampLayout is the wire format of updated_at: RFC 3339, UTC, millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders epoch milliseconds in the wire format.
func FormatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(TimestampLayout)
}

// FormatTime renders t in the wire format, truncated to milliseconds.
func FormatTime(t time.Time) string {
	return FormatTimestamp(t.UnixMilli())
}

// ParseTimestamp parses any RFC 3339 timestamp into epoch milliseconds.
// Sub-millisecond precision is truncated.
func ParseTimestamp(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UnixMilli(), nil
}
