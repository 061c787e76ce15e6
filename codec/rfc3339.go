// Package codec holds the pure value conversions used by the well-known-type
// JSON forms: RFC3339 timestamps, durations, base64 bytes and field masks.
// Functions here take and return plain values; they never touch descriptors
// or message state.
package codec

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Timestamp range accepted by the wire format, inclusive:
// 0001-01-01T00:00:00Z through 9999-12-31T23:59:59Z.
const (
	MinTimestampSeconds = -62135596800
	MaxTimestampSeconds = 253402300799
)

// FormatTimestamp renders seconds/nanos as an RFC3339 string, Z-normalized,
// with 0, 3, 6 or 9 fractional digits.
func FormatTimestamp(seconds int64, nanos int32) (string, error) {
	if seconds < MinTimestampSeconds || seconds > MaxTimestampSeconds {
		return "", fmt.Errorf("timestamp seconds %d out of range", seconds)
	}
	if nanos < 0 || nanos >= 1e9 {
		return "", fmt.Errorf("timestamp nanos %d out of range", nanos)
	}
	t := time.Unix(seconds, int64(nanos)).UTC()
	s := t.Format("2006-01-02T15:04:05")
	return s + fraction(nanos) + "Z", nil
}

// ParseTimestamp parses an RFC3339 string, accepting any UTC offset and
// normalizing the result.
func ParseTimestamp(s string) (seconds int64, nanos int32, err error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, 0, err
	}
	seconds = t.Unix()
	if seconds < MinTimestampSeconds || seconds > MaxTimestampSeconds {
		return 0, 0, errors.New("timestamp out of range")
	}
	return seconds, int32(t.Nanosecond()), nil
}

// fraction renders nanos as ".###", ".######", ".#########" or "".
func fraction(nanos int32) string {
	if nanos == 0 {
		return ""
	}
	s := fmt.Sprintf(".%09d", nanos)
	for strings.HasSuffix(s, "000") {
		s = strings.TrimSuffix(s, "000")
	}
	return s
}
