package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/flightroutes/internal/domain"
	"github.com/Domenick1991/flightroutes/internal/kafka"
	"github.com/Domenick1991/flightroutes/internal/repository"
	"github.com/stretchr/testify/mock"
)

// memStore keeps records in memory and logs each write as "<kind>:<op>".
type memStore struct {
	mu       sync.Mutex
	ops      []string
	airports []domain.AirportCodeMapping
	segments []domain.FlightSegment
	flights  []domain.FlightInstance
	failOp   string
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) store() repository.Store {
	return repository.Store{
		Airports: memAirports{m},
		Segments: memSegments{m},
		Flights:  memFlights{m},
	}
}

func (m *memStore) record(op string) error {
	m.ops = append(m.ops, op)
	if op == m.failOp {
		return &domain.StorageError{Op: op, Err: fmt.Errorf("injected")}
	}
	return nil
}

type memAirports struct{ m *memStore }

func (r memAirports) Insert(_ context.Context, a domain.AirportCodeMapping) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.record("airport:insert"); err != nil {
		return err
	}
	for _, existing := range r.m.airports {
		if existing.Code == a.Code {
			return &domain.StorageError{Op: "insert airport", Err: fmt.Errorf("duplicate %s", a.Code)}
		}
	}
	r.m.airports = append(r.m.airports, a)
	return nil
}

func (r memAirports) List(context.Context) ([]domain.AirportCodeMapping, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]domain.AirportCodeMapping(nil), r.m.airports...), nil
}

func (r memAirports) Count(context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.airports)), nil
}

func (r memAirports) DeleteAll(context.Context) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.airports = nil
	return r.m.record("airport:delete")
}

type memSegments struct{ m *memStore }

func (r memSegments) Insert(_ context.Context, s domain.FlightSegment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.record("segment:insert"); err != nil {
		return err
	}
	r.m.segments = append(r.m.segments, s)
	return nil
}

func (r memSegments) GetByID(_ context.Context, id string) (*domain.FlightSegment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.segments {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memSegments) GetByRoute(_ context.Context, origin, dest string) (*domain.FlightSegment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.segments {
		if s.OriginCode == origin && s.DestCode == dest {
			s := s
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memSegments) Count(context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.segments)), nil
}

func (r memSegments) DeleteAll(context.Context) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.segments = nil
	return r.m.record("segment:delete")
}

type memFlights struct{ m *memStore }

func (r memFlights) InsertBatch(_ context.Context, flights []domain.FlightInstance) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.record("flight:insert"); err != nil {
		return err
	}
	r.m.flights = append(r.m.flights, flights...)
	return nil
}

func (r memFlights) GetByID(_ context.Context, id string) (*domain.FlightInstance, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, f := range r.m.flights {
		if f.ID == id {
			f := f
			return &f, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memFlights) ListBySegment(_ context.Context, segmentID string, departure *time.Time) ([]domain.FlightInstance, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]domain.FlightInstance, 0)
	for _, f := range r.m.flights {
		if f.SegmentID != segmentID {
			continue
		}
		if departure != nil && !f.ScheduledDeparture.Equal(*departure) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (r memFlights) Count(context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.flights)), nil
}

func (r memFlights) DeleteAll(context.Context) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.flights = nil
	return r.m.record("flight:delete")
}

type seqKeys struct {
	mu sync.Mutex
	n  int
}

func (k *seqKeys) Generate() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.n++
	return fmt.Sprintf("flight-%d", k.n)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateFlightData(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) PublishLoadEvent(ctx context.Context, topic string, event kafka.LoadEvent) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(e kafka.LoadEvent) bool { return e.Type == eventType })
}

type MockLoadLock struct {
	mock.Mock
}

func (m *MockLoadLock) AcquireLoadLock(ctx context.Context, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoadLock) ReleaseLoadLock(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
