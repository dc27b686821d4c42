package repository

import (
	"context"

	"github.com/Domenick1991/flightroutes/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGAirportRepository struct {
	db *pgxpool.Pool
}

func NewAirportRepository(db *pgxpool.Pool) AirportRepository {
	return &PGAirportRepository{db: db}
}

func (r *PGAirportRepository) Insert(ctx context.Context, airport domain.AirportCodeMapping) error {
	_, err := r.db.Exec(ctx, `INSERT INTO airport_code_mappings (code, name) VALUES ($1, $2)`, airport.Code, airport.Name)
	return wrapErr("insert airport", err)
}

func (r *PGAirportRepository) List(ctx context.Context) ([]domain.AirportCodeMapping, error) {
	rows, err := r.db.Query(ctx, `SELECT code, name FROM airport_code_mappings ORDER BY code`)
	if err != nil {
		return nil, wrapErr("list airports", err)
	}
	defer rows.Close()

	airports := make([]domain.AirportCodeMapping, 0)
	for rows.Next() {
		var a domain.AirportCodeMapping
		if err := rows.Scan(&a.Code, &a.Name); err != nil {
			return nil, wrapErr("list airports", err)
		}
		airports = append(airports, a)
	}
	return airports, wrapErr("list airports", rows.Err())
}

func (r *PGAirportRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM airport_code_mappings`).Scan(&n)
	return n, wrapErr("count airports", err)
}

func (r *PGAirportRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM airport_code_mappings`)
	return wrapErr("delete airports", err)
}

var _ AirportRepository = (*PGAirportRepository)(nil)
