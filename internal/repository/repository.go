package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Domenick1991/flightroutes/internal/domain"
	"github.com/jackc/pgx/v5"
)

type AirportRepository interface {
	Insert(ctx context.Context, airport domain.AirportCodeMapping) error
	List(ctx context.Context) ([]domain.AirportCodeMapping, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}

type SegmentRepository interface {
	Insert(ctx context.Context, segment domain.FlightSegment) error
	GetByID(ctx context.Context, id string) (*domain.FlightSegment, error)
	GetByRoute(ctx context.Context, originCode, destCode string) (*domain.FlightSegment, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}

type FlightRepository interface {
	InsertBatch(ctx context.Context, flights []domain.FlightInstance) error
	GetByID(ctx context.Context, id string) (*domain.FlightInstance, error)
	// ListBySegment returns the segment's flights; a non-nil departure keeps only
	// flights scheduled to depart at exactly that instant.
	ListBySegment(ctx context.Context, segmentID string, departure *time.Time) ([]domain.FlightInstance, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}

// Store groups the three repositories of one backend.
type Store struct {
	Airports AirportRepository
	Segments SegmentRepository
	Flights  FlightRepository
}

// wrapErr maps no-rows to domain.ErrNotFound and anything else to a StorageError.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return &domain.StorageError{Op: op, Err: err}
}
