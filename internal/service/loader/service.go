package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Domenick1991/flightroutes/internal/kafka"
	"github.com/Domenick1991/flightroutes/internal/mileage"
	"github.com/Domenick1991/flightroutes/internal/repository"
	"github.com/charmbracelet/log"
)

// ErrLoadInProgress is returned when a load or drop is requested while a load runs.
var ErrLoadInProgress = errors.New("flight load already in progress")

const (
	stateIdle int32 = iota
	stateLoading
)

type LoaderUseCase interface {
	LoadFlightDB(ctx context.Context, daysToLoad int) (string, error)
	LoadDefault(ctx context.Context) (string, error)
	DropFlights(ctx context.Context) error
	DaysToLoad() int
	IsPopulated(ctx context.Context) bool
	Status(ctx context.Context) (*Status, error)
}

type CacheInvalidator interface {
	InvalidateFlightData(ctx context.Context) error
}

type Producer interface {
	PublishLoadEvent(ctx context.Context, topic string, event kafka.LoadEvent) error
}

// LoadLock serializes loads across processes sharing one store.
type LoadLock interface {
	AcquireLoadLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseLoadLock(ctx context.Context) error
}

// DefaultLoadLockTTL bounds how long a crashed process can block other loads.
const DefaultLoadLockTTL = 10 * time.Minute

type Status struct {
	Airports   int64 `json:"airports"`
	Segments   int64 `json:"segments"`
	Flights    int64 `json:"flights"`
	Populated  bool  `json:"populated"`
	Loading    bool  `json:"loading"`
	DaysToLoad int   `json:"days_to_load"`
}

// Service runs drop-and-rebuild load cycles. One load runs at a time; overlapping
// calls get ErrLoadInProgress.
type Service struct {
	store       repository.Store
	generator   *Generator
	cache       CacheInvalidator
	producer    Producer
	lock        LoadLock
	lockTTL     time.Duration
	eventsTopic string
	mileagePath string
	daysToLoad  int
	open        func(path string) (io.ReadCloser, error)
	now         func() time.Time

	state     atomic.Int32
	populated atomic.Bool
}

type ServiceOption func(*Service)

func WithEventsTopic(topic string) ServiceOption {
	return func(s *Service) {
		s.eventsTopic = topic
	}
}

// WithLoadLock makes loads and drops also take lock, so two processes over the same
// store never run at once.
func WithLoadLock(lock LoadLock, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.lock = lock
		s.lockTTL = ttl
	}
}

// WithMileagePath loads the matrix from a file instead of the bundled one.
func WithMileagePath(path string) ServiceOption {
	return func(s *Service) {
		s.mileagePath = path
	}
}

func NewService(
	store repository.Store,
	keys KeyGenerator,
	cache CacheInvalidator,
	producer Producer,
	daysToLoad int,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		store:      store,
		generator:  NewGenerator(store, keys),
		cache:      cache,
		producer:   producer,
		daysToLoad: daysToLoad,
		open:       mileage.Open,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) DaysToLoad() int {
	return s.daysToLoad
}

func (s *Service) LoadDefault(ctx context.Context) (string, error) {
	return s.LoadFlightDB(ctx, s.daysToLoad)
}

// LoadFlightDB drops all flight data, clears the read cache and regenerates from the
// matrix. The summary is returned even when the load fails, with zero elapsed time.
func (s *Service) LoadFlightDB(ctx context.Context, daysToLoad int) (string, error) {
	if daysToLoad < 0 {
		return "", fmt.Errorf("days to load must not be negative, got %d", daysToLoad)
	}
	release, err := s.begin(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	log.Info("start loading flights", "days", daysToLoad)
	start := s.now()

	stats, err := s.load(ctx, daysToLoad)
	if err != nil {
		log.Error("flight load failed", "days", daysToLoad, "err", err)
		s.publish(ctx, kafka.LoadEvent{Type: kafka.EventLoadFailed, Days: daysToLoad, Error: err.Error(), At: s.now()})
		return summary(daysToLoad, 0), err
	}

	elapsed := s.now().Sub(start).Seconds()
	log.Info("finished loading flights", "seconds", elapsed,
		"airports", stats.Airports, "segments", stats.Segments, "flights", stats.Flights)
	s.publish(ctx, kafka.LoadEvent{
		Type:            kafka.EventFlightsLoaded,
		Days:            daysToLoad,
		Airports:        stats.Airports,
		Segments:        stats.Segments,
		Flights:         stats.Flights,
		DurationSeconds: elapsed,
		At:              s.now(),
	})
	return summary(daysToLoad, elapsed), nil
}

func (s *Service) load(ctx context.Context, daysToLoad int) (Stats, error) {
	if err := s.dropAll(ctx); err != nil {
		return Stats{}, err
	}
	if err := s.invalidate(ctx); err != nil {
		return Stats{}, err
	}

	r, err := s.open(s.mileagePath)
	if err != nil {
		return Stats{}, fmt.Errorf("open mileage matrix: %w", err)
	}
	defer r.Close()

	return s.generator.Generate(ctx, r, daysToLoad)
}

// DropFlights removes every airport mapping, segment and flight.
func (s *Service) DropFlights(ctx context.Context) error {
	release, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := s.dropAll(ctx); err != nil {
		return err
	}
	if err := s.invalidate(ctx); err != nil {
		return err
	}
	s.publish(ctx, kafka.LoadEvent{Type: kafka.EventFlightsDropped, At: s.now()})
	return nil
}

// begin claims the loader for one load or drop, first in this process and then
// through the shared lock when one is configured.
func (s *Service) begin(ctx context.Context) (func(), error) {
	if !s.state.CompareAndSwap(stateIdle, stateLoading) {
		return nil, ErrLoadInProgress
	}
	if s.lock == nil {
		return func() { s.state.Store(stateIdle) }, nil
	}

	ttl := s.lockTTL
	if ttl <= 0 {
		ttl = DefaultLoadLockTTL
	}
	ok, err := s.lock.AcquireLoadLock(ctx, ttl)
	if err != nil {
		s.state.Store(stateIdle)
		return nil, fmt.Errorf("acquire load lock: %w", err)
	}
	if !ok {
		s.state.Store(stateIdle)
		return nil, ErrLoadInProgress
	}
	return func() {
		if err := s.lock.ReleaseLoadLock(context.WithoutCancel(ctx)); err != nil {
			log.Warn("release load lock", "err", err)
		}
		s.state.Store(stateIdle)
	}, nil
}

func (s *Service) dropAll(ctx context.Context) error {
	if err := s.store.Airports.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.store.Segments.DeleteAll(ctx); err != nil {
		return err
	}
	return s.store.Flights.DeleteAll(ctx)
}

func (s *Service) invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.InvalidateFlightData(ctx); err != nil {
		return fmt.Errorf("invalidate flight cache: %w", err)
	}
	return nil
}

// IsPopulated reports whether any flight exists. The first positive answer is
// latched for the life of the process: later drops do not reset it.
func (s *Service) IsPopulated(ctx context.Context) bool {
	if s.populated.Load() {
		return true
	}
	n, err := s.store.Flights.Count(ctx)
	if err != nil {
		log.Error("count flights", "err", err)
		return false
	}
	if n > 0 {
		s.populated.Store(true)
		return true
	}
	return false
}

// Loading reports whether a load or drop is running.
func (s *Service) Loading() bool {
	return s.state.Load() == stateLoading
}

func (s *Service) Status(ctx context.Context) (*Status, error) {
	airports, err := s.store.Airports.Count(ctx)
	if err != nil {
		return nil, err
	}
	segments, err := s.store.Segments.Count(ctx)
	if err != nil {
		return nil, err
	}
	flights, err := s.store.Flights.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{
		Airports:   airports,
		Segments:   segments,
		Flights:    flights,
		Populated:  s.IsPopulated(ctx),
		Loading:    s.Loading(),
		DaysToLoad: s.daysToLoad,
	}, nil
}

func (s *Service) publish(ctx context.Context, event kafka.LoadEvent) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	if err := s.producer.PublishLoadEvent(ctx, s.eventsTopic, event); err != nil {
		log.Warn("publish load event", "type", event.Type, "err", err)
	}
}

func summary(days int, seconds float64) string {
	return "Loaded flights for " + strconv.Itoa(days) + " days in " + strconv.FormatFloat(seconds, 'f', -1, 64) + " seconds"
}

var _ LoaderUseCase = (*Service)(nil)
