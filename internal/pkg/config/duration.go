package config

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration indicates a duration string that is not <number><s|m|h|d>.
var ErrInvalidDuration = errors.New("config: invalid duration string")

// ParseTTL parses compact duration strings like "30s", "15m", "1h" or "7d".
//
// A bare number is treated as seconds.
func ParseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return 0, ErrInvalidDuration
	}

	unit := time.Second
	switch raw[len(raw)-1] {
	case 's':
		raw = raw[:len(raw)-1]
	case 'm':
		unit = time.Minute
		raw = raw[:len(raw)-1]
	case 'h':
		unit = time.Hour
		raw = raw[:len(raw)-1]
	case 'd':
		unit = 24 * time.Hour
		raw = raw[:len(raw)-1]
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidDuration
	}

	return time.Duration(n) * unit, nil
}
