package repository

import (
	"context"

	"github.com/Domenick1991/flightroutes/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGSegmentRepository struct {
	db *pgxpool.Pool
}

func NewSegmentRepository(db *pgxpool.Pool) SegmentRepository {
	return &PGSegmentRepository{db: db}
}

func (r *PGSegmentRepository) Insert(ctx context.Context, segment domain.FlightSegment) error {
	_, err := r.db.Exec(ctx, `INSERT INTO flight_segments (id, origin_code, dest_code, miles) VALUES ($1, $2, $3, $4)`,
		segment.ID, segment.OriginCode, segment.DestCode, segment.Miles)
	return wrapErr("insert segment", err)
}

func (r *PGSegmentRepository) GetByID(ctx context.Context, id string) (*domain.FlightSegment, error) {
	row := r.db.QueryRow(ctx, `SELECT id, origin_code, dest_code, miles FROM flight_segments WHERE id=$1`, id)
	var s domain.FlightSegment
	if err := row.Scan(&s.ID, &s.OriginCode, &s.DestCode, &s.Miles); err != nil {
		return nil, wrapErr("get segment", err)
	}
	return &s, nil
}

func (r *PGSegmentRepository) GetByRoute(ctx context.Context, originCode, destCode string) (*domain.FlightSegment, error) {
	row := r.db.QueryRow(ctx, `SELECT id, origin_code, dest_code, miles FROM flight_segments WHERE origin_code=$1 AND dest_code=$2 LIMIT 1`, originCode, destCode)
	var s domain.FlightSegment
	if err := row.Scan(&s.ID, &s.OriginCode, &s.DestCode, &s.Miles); err != nil {
		return nil, wrapErr("get segment by route", err)
	}
	return &s, nil
}

func (r *PGSegmentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM flight_segments`).Scan(&n)
	return n, wrapErr("count segments", err)
}

func (r *PGSegmentRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM flight_segments`)
	return wrapErr("delete segments", err)
}

var _ SegmentRepository = (*PGSegmentRepository)(nil)
