package cache

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/flightroutes/config"
	"github.com/Domenick1991/flightroutes/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(config.RedisConfig{Addr: mr.Addr()}, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestKeys(t *testing.T) {
	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "cache:flightdata:segment:JFK:CDG", segmentKey("JFK", "CDG"))
	assert.Equal(t, "cache:flightdata:flights:AA3:all", FlightsKey("AA3", nil))
	assert.Equal(t, "cache:flightdata:flights:AA3:1792195200", FlightsKey("AA3", &day))

	// invalidation scans one prefix, every key must live under it
	for _, k := range []string{segmentKey("A", "B"), FlightsKey("AA0", nil), FlightsKey("AA0", &day)} {
		assert.True(t, strings.HasPrefix(k, keyPrefix), k)
	}
	assert.False(t, strings.HasPrefix(loadLockKey, keyPrefix))
}

func TestRedisCache_Segment(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	got, err := c.GetSegment(ctx, "JFK", "CDG")
	require.NoError(t, err)
	assert.Nil(t, got)

	segment := domain.FlightSegment{ID: "AA7", OriginCode: "JFK", DestCode: "CDG", Miles: 3635}
	require.NoError(t, c.SetSegment(ctx, segment))

	got, err = c.GetSegment(ctx, "JFK", "CDG")
	require.NoError(t, err)
	assert.Equal(t, &segment, got)
	assert.Equal(t, time.Minute, mr.TTL(segmentKey("JFK", "CDG")))
}

func TestRedisCache_Flights(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.Local)

	got, err := c.GetFlights(ctx, "AA7", &day)
	require.NoError(t, err)
	assert.Nil(t, got, "miss")

	flights := []domain.FlightInstance{{
		ID:                   "f1",
		SegmentID:            "AA7",
		ScheduledDeparture:   day,
		ScheduledArrival:     day.Add(6*time.Hour + 3*time.Minute),
		FirstClassBaseCost:   500,
		EconomyClassBaseCost: 200,
		NumFirstClassSeats:   10,
		NumEconomyClassSeats: 200,
		AirplaneTypeID:       "B747",
	}}
	require.NoError(t, c.SetFlights(ctx, "AA7", &day, flights))

	got, err = c.GetFlights(ctx, "AA7", &day)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, flights[0].ScheduledDeparture.Equal(got[0].ScheduledDeparture))
	assert.True(t, flights[0].ScheduledArrival.Equal(got[0].ScheduledArrival))
	assert.Equal(t, "B747", got[0].AirplaneTypeID)

	// a cached empty list is a hit, not a miss
	require.NoError(t, c.SetFlights(ctx, "AA8", nil, nil))
	got, err = c.GetFlights(ctx, "AA8", nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRedisCache_InvalidateFlightData(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, c.SetFlights(ctx, "AA"+strconv.Itoa(i), nil, []domain.FlightInstance{}))
	}
	require.NoError(t, c.SetSegment(ctx, domain.FlightSegment{ID: "AA0", OriginCode: "A", DestCode: "B", Miles: 1}))
	require.NoError(t, mr.Set("other:key", "kept"))
	ok, err := c.AcquireLoadLock(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.InvalidateFlightData(ctx))

	assert.Len(t, mr.Keys(), 2)
	for _, k := range mr.Keys() {
		assert.False(t, strings.HasPrefix(k, keyPrefix), k)
	}
	assert.True(t, mr.Exists("other:key"))
	assert.True(t, mr.Exists(loadLockKey))

	got, err := c.GetFlights(ctx, "AA42", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCache_InvalidateEmpty(t *testing.T) {
	c, _ := newTestCache(t)
	assert.NoError(t, c.InvalidateFlightData(context.Background()))
}

func TestRedisCache_LoadLock(t *testing.T) {
	c, mr := newTestCache(t)
	other := NewRedisCache(config.RedisConfig{Addr: mr.Addr()}, time.Minute)
	defer other.Close()
	ctx := context.Background()

	ok, err := c.AcquireLoadLock(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = other.AcquireLoadLock(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second process must not get the lock")

	require.NoError(t, c.ReleaseLoadLock(ctx))
	ok, err = other.AcquireLoadLock(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = c.AcquireLoadLock(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock is free again")
}

func TestRedisCache_Unreachable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.GetSegment(context.Background(), "A", "B")
	assert.Error(t, err)
	assert.Error(t, c.InvalidateFlightData(context.Background()))
}
