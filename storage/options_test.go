package storage

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_HugeTTLNeverExpires(t *testing.T) {
	for _, minutes := range []float64{1.6e14, 1e20, math.MaxFloat64} {
		s, e, clk := newTestStorage(t)
		require.NoError(t, s.Set("k", "v", ExpiresIn(minutes)))

		meta, _ := e.raw("k:__meta")
		assert.Equal(t, `{"expiresAt":9223372036854775807}`, meta, "minutes=%g", minutes)

		clk.Advance(100 * 365 * 24 * time.Hour)
		v, err := s.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v", v, "minutes=%g", minutes)
	}
}

func TestSet_HugeNegativeTTLExpiresImmediately(t *testing.T) {
	s, e, _ := newTestStorage(t)
	require.NoError(t, s.Set("k", "v", ExpiresIn(-1e20)))

	v, err := s.Get("k")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Zero(t, e.Len())
}

func TestClampMillis(t *testing.T) {
	assert.Equal(t, int64(90_000), clampMillis(90_000))
	assert.Equal(t, int64(math.MaxInt64), clampMillis(float64(math.MaxInt64)))
	assert.Equal(t, int64(math.MaxInt64), clampMillis(1e30))
	assert.Equal(t, int64(math.MinInt64), clampMillis(-1e30))
}

func TestExpiresAtSaturates(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, now+60_000, expiresAt(now, 60_000))
	assert.Equal(t, now-60_000, expiresAt(now, -60_000))
	assert.Equal(t, int64(math.MaxInt64), expiresAt(now, math.MaxInt64))
	assert.Equal(t, int64(math.MaxInt64), expiresAt(now, math.MaxInt64-now+1))
	assert.Equal(t, int64(math.MinInt64), expiresAt(-now, math.MinInt64))
}
