package loader

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/flightroutes/internal/domain"
	"github.com/Domenick1991/flightroutes/internal/mileage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoAirports = "A,B\n00A,00B\nA,00A,NA\nB,00B,300\n"

func fixedNow() time.Time {
	return time.Date(2026, 10, 17, 15, 4, 5, 0, time.Local)
}

func newTestGenerator(m *memStore) *Generator {
	g := NewGenerator(m.store(), &seqKeys{})
	g.now = fixedNow
	return g
}

func TestGenerator_TwoAirports(t *testing.T) {
	m := newMemStore()
	g := newTestGenerator(m)

	stats, err := g.Generate(context.Background(), strings.NewReader(twoAirports), 2)

	require.NoError(t, err)
	assert.Equal(t, Stats{Airports: 2, Segments: 1, Flights: 3}, stats)
	assert.Equal(t, []domain.FlightSegment{{ID: "AA0", OriginCode: "00B", DestCode: "00A", Miles: 300}}, m.segments)

	today := time.Date(2026, 10, 17, 0, 0, 0, 0, time.Local)
	require.Len(t, m.flights, 3)
	for i, f := range m.flights {
		dep := today.AddDate(0, 0, i-1)
		assert.True(t, f.ScheduledDeparture.Equal(dep), "flight %d departs %v", i, f.ScheduledDeparture)
		assert.True(t, f.ScheduledArrival.Equal(dep.Add(30*time.Minute)))
		assert.Equal(t, "AA0", f.SegmentID)
		assert.Equal(t, 500, f.FirstClassBaseCost)
		assert.Equal(t, 200, f.EconomyClassBaseCost)
		assert.Equal(t, 10, f.NumFirstClassSeats)
		assert.Equal(t, 200, f.NumEconomyClassSeats)
		assert.Equal(t, "B747", f.AirplaneTypeID)
	}
	assert.Equal(t, "flight-1", m.flights[0].ID)
	assert.Equal(t, "flight-3", m.flights[2].ID)
}

func TestGenerator_AirportsPersistedLast(t *testing.T) {
	m := newMemStore()
	g := newTestGenerator(m)

	_, err := g.Generate(context.Background(), strings.NewReader("A,B,C\n00A,00B,00C\nA,00A,NA,10,20\nB,00B,10,NA,30\n"), 1)
	require.NoError(t, err)

	firstAirport := -1
	for i, op := range m.ops {
		if op == "airport:insert" && firstAirport < 0 {
			firstAirport = i
		}
		if firstAirport >= 0 {
			assert.Equal(t, "airport:insert", op, "op %d after airports started", i)
		}
	}
	assert.Equal(t, len(m.ops)-3, firstAirport)
}

func TestGenerator_BundledMatrixProperties(t *testing.T) {
	for _, days := range []int{0, 1, 5} {
		m := newMemStore()
		g := newTestGenerator(m)

		r, err := mileage.Open("")
		require.NoError(t, err)
		stats, err := g.Generate(context.Background(), r, days)
		r.Close()
		require.NoError(t, err)

		assert.Equal(t, 86, stats.Segments)
		assert.Equal(t, 86*(days+1), stats.Flights)

		perSegment := make(map[string]int)
		for _, f := range m.flights {
			perSegment[f.SegmentID]++
		}
		for _, s := range m.segments {
			assert.Equal(t, days+1, perSegment[s.ID], "segment %s", s.ID)
			assert.Positive(t, s.Miles)
		}

		codes := make(map[string]bool)
		for _, a := range m.airports {
			codes[a.Code] = true
		}
		for _, s := range m.segments {
			assert.True(t, codes[s.OriginCode], "origin %s", s.OriginCode)
			assert.True(t, codes[s.DestCode], "dest %s", s.DestCode)
		}
	}
}

func TestGenerator_CounterResetsPerRun(t *testing.T) {
	m := newMemStore()
	g := newTestGenerator(m)

	_, err := g.Generate(context.Background(), strings.NewReader(twoAirports), 1)
	require.NoError(t, err)
	m.segments, m.airports = nil, nil
	_, err = g.Generate(context.Background(), strings.NewReader(twoAirports), 1)
	require.NoError(t, err)

	assert.Equal(t, "AA0", m.segments[0].ID)
}

func TestGenerator_ParseErrorWritesNothing(t *testing.T) {
	m := newMemStore()
	g := newTestGenerator(m)

	_, err := g.Generate(context.Background(), strings.NewReader("A,B\n00A,00B\nA,00A,NA,12\nB,00B,x,NA\n"), 1)

	var pe *domain.ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Empty(t, m.ops)
}

func TestGenerator_StorageErrorStops(t *testing.T) {
	m := newMemStore()
	m.failOp = "flight:insert"
	g := newTestGenerator(m)

	stats, err := g.Generate(context.Background(), strings.NewReader(twoAirports), 1)

	var se *domain.StorageError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, 1, stats.Segments)
	assert.Zero(t, stats.Airports)
}

func TestMidnight(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	got := midnight(time.Date(2026, 1, 31, 23, 59, 59, 999, loc))
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, loc), got)
}
