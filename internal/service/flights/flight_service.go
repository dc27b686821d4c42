package flights

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Domenick1991/flightroutes/internal/domain"
	"github.com/Domenick1991/flightroutes/internal/repository"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// FlightUseCase answers route and schedule lookups. Misses and storage faults both
// come back as empty results; faults are logged.
type FlightUseCase interface {
	FindSegment(ctx context.Context, originCode, destCode string) (*domain.FlightSegment, bool)
	RewardMiles(ctx context.Context, segmentID string) (int, bool)
	FindFlightsBySegment(ctx context.Context, segment domain.FlightSegment, departure *time.Time) []domain.FlightView
	FindFlights(ctx context.Context, originCode, destCode string, departure *time.Time) []domain.FlightView
	GetFlight(ctx context.Context, id string) (*domain.FlightInstance, bool)
	ListAirports(ctx context.Context) []domain.AirportCodeMapping
	Ping(ctx context.Context) error
}

type FlightCache interface {
	GetSegment(ctx context.Context, originCode, destCode string) (*domain.FlightSegment, error)
	SetSegment(ctx context.Context, segment domain.FlightSegment) error
	GetFlights(ctx context.Context, segmentID string, departure *time.Time) ([]domain.FlightInstance, error)
	SetFlights(ctx context.Context, segmentID string, departure *time.Time, flights []domain.FlightInstance) error
}

type FlightService struct {
	airports repository.AirportRepository
	segments repository.SegmentRepository
	flights  repository.FlightRepository
	cache    FlightCache
	group    singleflight.Group
}

func NewFlightService(store repository.Store, cache FlightCache) *FlightService {
	return &FlightService{
		airports: store.Airports,
		segments: store.Segments,
		flights:  store.Flights,
		cache:    cache,
	}
}

func (s *FlightService) FindSegment(ctx context.Context, originCode, destCode string) (*domain.FlightSegment, bool) {
	if s.cache != nil {
		if cached, err := s.cache.GetSegment(ctx, originCode, destCode); err == nil && cached != nil {
			return cached, true
		}
	}

	segment, err := s.segments.GetByRoute(ctx, originCode, destCode)
	if err != nil {
		logLookupErr("find segment", err, "from", originCode, "to", destCode)
		return nil, false
	}
	if s.cache != nil {
		_ = s.cache.SetSegment(ctx, *segment)
	}
	return segment, true
}

func (s *FlightService) RewardMiles(ctx context.Context, segmentID string) (int, bool) {
	segment, err := s.segments.GetByID(ctx, segmentID)
	if err != nil {
		logLookupErr("reward miles", err, "segment", segmentID)
		return 0, false
	}
	return segment.Miles, true
}

// FindFlightsBySegment lists the segment's flights, only those departing exactly at
// departure when it is given.
func (s *FlightService) FindFlightsBySegment(ctx context.Context, segment domain.FlightSegment, departure *time.Time) []domain.FlightView {
	log.Debug("flights by segment", "segment", segment.ID, "departure", departure)

	// the shared lookup outlives any single caller; each caller stops waiting on its own ctx
	ch := s.group.DoChan(flightsKey(segment.ID, departure), func() (interface{}, error) {
		return s.listFlights(context.WithoutCancel(ctx), segment.ID, departure)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		log.Debug("flights by segment: caller gone", "segment", segment.ID, "err", ctx.Err())
		return []domain.FlightView{}
	}
	if res.Err != nil {
		logLookupErr("flights by segment", res.Err, "segment", segment.ID)
		return []domain.FlightView{}
	}

	flights := res.Val.([]domain.FlightInstance)
	views := make([]domain.FlightView, 0, len(flights))
	for _, f := range flights {
		views = append(views, domain.NewFlightView(f, segment))
	}
	return views
}

func (s *FlightService) FindFlights(ctx context.Context, originCode, destCode string, departure *time.Time) []domain.FlightView {
	segment, ok := s.FindSegment(ctx, originCode, destCode)
	if !ok {
		return []domain.FlightView{}
	}
	return s.FindFlightsBySegment(ctx, *segment, departure)
}

func (s *FlightService) GetFlight(ctx context.Context, id string) (*domain.FlightInstance, bool) {
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		logLookupErr("get flight", err, "id", id)
		return nil, false
	}
	return flight, true
}

func (s *FlightService) ListAirports(ctx context.Context) []domain.AirportCodeMapping {
	airports, err := s.airports.List(ctx)
	if err != nil {
		logLookupErr("list airports", err)
		return []domain.AirportCodeMapping{}
	}
	return airports
}

// Ping checks that the store answers a count query.
func (s *FlightService) Ping(ctx context.Context) error {
	_, err := s.flights.Count(ctx)
	return err
}

func (s *FlightService) listFlights(ctx context.Context, segmentID string, departure *time.Time) ([]domain.FlightInstance, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx, segmentID, departure); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.flights.ListBySegment(ctx, segmentID, departure)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, segmentID, departure, flights)
	}
	return flights, nil
}

func flightsKey(segmentID string, departure *time.Time) string {
	if departure == nil {
		return segmentID
	}
	return segmentID + "@" + strconv.FormatInt(departure.Unix(), 10)
}

func logLookupErr(op string, err error, keyvals ...interface{}) {
	if errors.Is(err, domain.ErrNotFound) {
		log.Debug(op+": not found", keyvals...)
		return
	}
	log.Error(op, append(keyvals, "err", err)...)
}

var _ FlightUseCase = (*FlightService)(nil)
