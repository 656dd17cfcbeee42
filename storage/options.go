package storage

import (
	"math"
	"time"
)

const millisecondsPerMinute = 60_000

// SetOption configures a single Set call.
type SetOption func(*setOptions)

type setOptions struct {
	hasTTL    bool
	ttlMillis int64
}

// ExpiresIn attaches an expiration the given number of minutes from now.
// Fractional minutes are honored to the millisecond. NaN and infinite values
// are ignored and the entry is stored without expiration. Deadlines beyond the
// int64 millisecond range are pinned to its maximum and never pass.
func ExpiresIn(minutes float64) SetOption {
	return func(o *setOptions) {
		if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
			o.hasTTL = false
			return
		}
		o.hasTTL = true
		o.ttlMillis = clampMillis(math.Round(minutes * millisecondsPerMinute))
	}
}

// clampMillis converts ms to int64, saturating at the int64 range.
func clampMillis(ms float64) int64 {
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	const limit = float64(math.MaxInt64)
	switch {
	case ms >= limit:
		return math.MaxInt64
	case ms <= -limit:
		return math.MinInt64
	}
	return int64(ms)
}

// expiresAt returns now+ttl in epoch milliseconds, saturating instead of wrapping.
func expiresAt(nowMillis, ttlMillis int64) int64 {
	switch {
	case ttlMillis > 0 && nowMillis > math.MaxInt64-ttlMillis:
		return math.MaxInt64
	case ttlMillis < 0 && nowMillis < math.MinInt64-ttlMillis:
		return math.MinInt64
	}
	return nowMillis + ttlMillis
}

// ExpiresAfter is ExpiresIn expressed as a duration.
func ExpiresAfter(d time.Duration) SetOption {
	return func(o *setOptions) {
		o.hasTTL = true
		o.ttlMillis = d.Milliseconds()
	}
}
