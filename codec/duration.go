package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Duration range accepted by the wire format, inclusive: +/- 10000 years.
const MaxDurationSeconds = 315576000000

// FormatDuration renders seconds/nanos as a decimal-seconds string with an
// "s" suffix and 0, 3, 6 or 9 fractional digits.
func FormatDuration(seconds int64, nanos int32) (string, error) {
	if seconds < -MaxDurationSeconds || seconds > MaxDurationSeconds {
		return "", fmt.Errorf("duration seconds %d out of range", seconds)
	}
	if nanos <= -1e9 || nanos >= 1e9 {
		return "", fmt.Errorf("duration nanos %d out of range", nanos)
	}
	if seconds != 0 && nanos != 0 && (seconds < 0) != (nanos < 0) {
		return "", errors.New("duration seconds and nanos have opposing signs")
	}
	sign := ""
	if seconds < 0 || nanos < 0 {
		sign = "-"
		seconds = -seconds
		nanos = -nanos
	}
	return sign + strconv.FormatInt(seconds, 10) + fraction(nanos) + "s", nil
}

// ParseDuration parses a decimal-seconds string with an "s" suffix.
func ParseDuration(s string) (seconds int64, nanos int32, err error) {
	body, ok := strings.CutSuffix(s, "s")
	if !ok || body == "" {
		return 0, 0, fmt.Errorf("malformed duration %q", s)
	}
	neg := false
	if body[0] == '-' {
		neg = true
		body = body[1:]
	} else if body[0] == '+' {
		body = body[1:]
	}
	intPart, fracPart, _ := strings.Cut(body, ".")
	if intPart == "" {
		return 0, 0, fmt.Errorf("malformed duration %q", s)
	}
	seconds, err = strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed duration %q: %w", s, err)
	}
	if fracPart != "" {
		if len(fracPart) > 9 {
			return 0, 0, fmt.Errorf("duration %q has sub-nanosecond precision", s)
		}
		padded := fracPart + strings.Repeat("0", 9-len(fracPart))
		n, ferr := strconv.ParseInt(padded, 10, 32)
		if ferr != nil {
			return 0, 0, fmt.Errorf("malformed duration %q: %w", s, ferr)
		}
		nanos = int32(n)
	}
	if neg {
		seconds = -seconds
		nanos = -nanos
	}
	if seconds < -MaxDurationSeconds || seconds > MaxDurationSeconds {
		return 0, 0, errors.New("duration out of range")
	}
	return seconds, nanos, nil
}
