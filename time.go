package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// ParseExpiry converts a TTL pattern like "7d", "24h", or "90m" into a
// duration. Day suffixes are expanded before delegating to
// time.ParseDuration, which has no day unit. An unparsable pattern is a
// programmer error surfaced immediately, never recovered.
func ParseExpiry(pattern string) (time.Duration, error) {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return 0, errors.New("empty TTL pattern", errors.CategoryBadInput)
	}

	if strings.HasSuffix(trimmed, "d") {
		days, err := strconv.ParseFloat(strings.TrimSuffix(trimmed, "d"), 64)
		if err != nil {
			return 0, errors.Wrap(err, errors.CategoryBadInput, "invalid TTL pattern "+pattern)
		}
		return time.Duration(days * float64(24*time.Hour)), nil
	}

	duration, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryBadInput, "invalid TTL pattern "+pattern)
	}

	return duration, nil
}

// IsWithinThresholdPeriod checks if the given time is within the threshold
func IsWithinThresholdPeriod(t time.Time, pattern string) (bool, error) {
	duration, err := ParseExpiry(pattern)
	if err != nil {
		return false, err
	}

	threshold := time.Now().Add(-duration)
	return t.After(threshold), nil
}
