package loader

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/Domenick1991/flightroutes/internal/domain"
	"github.com/Domenick1991/flightroutes/internal/mileage"
	"github.com/Domenick1991/flightroutes/internal/repository"
)

const (
	segmentIDPrefix      = "AA"
	firstClassBaseCost   = 500
	economyClassBaseCost = 200
	numFirstClassSeats   = 10
	numEconomyClassSeats = 200
	airplaneTypeID       = "B747"
)

type KeyGenerator interface {
	Generate() string
}

// Stats counts the records written by one Generate call.
type Stats struct {
	Airports int
	Segments int
	Flights  int
}

// Generator turns a mileage matrix into segments, dated flights and airport mappings.
// It is not safe for concurrent use.
type Generator struct {
	airports repository.AirportRepository
	segments repository.SegmentRepository
	flights  repository.FlightRepository
	keys     KeyGenerator
	now      func() time.Time

	nextSegment int
}

func NewGenerator(store repository.Store, keys KeyGenerator) *Generator {
	return &Generator{
		airports: store.Airports,
		segments: store.Segments,
		flights:  store.Flights,
		keys:     keys,
		now:      time.Now,
	}
}

// Generate parses the whole matrix before writing anything. For every routed cell it
// stores one segment and daysToLoad+1 flights, departing at local midnight from
// yesterday onwards. Airport mappings are stored last.
func (g *Generator) Generate(ctx context.Context, r io.Reader, daysToLoad int) (Stats, error) {
	m, err := mileage.Parse(r)
	if err != nil {
		return Stats{}, err
	}

	g.nextSegment = 0
	today := midnight(g.now())
	var stats Stats

	for _, row := range m.Rows {
		for _, col := range row.Columns() {
			dest, ok := m.Destination(col)
			if !ok {
				return stats, &domain.ParseError{Line: row.Line, Column: col, Err: errors.New("column has no airport")}
			}
			segment := domain.FlightSegment{
				ID:         g.nextSegmentID(),
				OriginCode: row.Origin,
				DestCode:   dest,
				Miles:      row.Distances[col],
			}
			if err := g.segments.Insert(ctx, segment); err != nil {
				return stats, err
			}
			stats.Segments++

			flights := g.instances(segment, today, daysToLoad)
			if err := g.flights.InsertBatch(ctx, flights); err != nil {
				return stats, err
			}
			stats.Flights += len(flights)
		}
	}

	for _, a := range m.Airports {
		if err := g.airports.Insert(ctx, a); err != nil {
			return stats, err
		}
		stats.Airports++
	}
	return stats, nil
}

func (g *Generator) nextSegmentID() string {
	id := segmentIDPrefix + strconv.Itoa(g.nextSegment)
	g.nextSegment++
	return id
}

func (g *Generator) instances(segment domain.FlightSegment, today time.Time, daysToLoad int) []domain.FlightInstance {
	flights := make([]domain.FlightInstance, 0, daysToLoad+1)
	for day := -1; day < daysToLoad; day++ {
		departure := today.AddDate(0, 0, day)
		flights = append(flights, domain.FlightInstance{
			ID:                   g.keys.Generate(),
			SegmentID:            segment.ID,
			ScheduledDeparture:   departure,
			ScheduledArrival:     mileage.Arrival(departure, segment.Miles),
			FirstClassBaseCost:   firstClassBaseCost,
			EconomyClassBaseCost: economyClassBaseCost,
			NumFirstClassSeats:   numFirstClassSeats,
			NumEconomyClassSeats: numEconomyClassSeats,
			AirplaneTypeID:       airplaneTypeID,
		})
	}
	return flights
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
