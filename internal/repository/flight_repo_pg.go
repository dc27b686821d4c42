package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightroutes/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightColumns = `id, flight_segment_id, scheduled_departure, scheduled_arrival, first_class_base_cost, economy_class_base_cost, num_first_class_seats, num_economy_class_seats, airplane_type_id`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) InsertBatch(ctx context.Context, flights []domain.FlightInstance) error {
	if len(flights) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, f := range flights {
		batch.Queue(`INSERT INTO flights (`+flightColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			f.ID, f.SegmentID, f.ScheduledDeparture, f.ScheduledArrival,
			f.FirstClassBaseCost, f.EconomyClassBaseCost, f.NumFirstClassSeats, f.NumEconomyClassSeats, f.AirplaneTypeID)
	}
	return wrapErr("insert flights", r.db.SendBatch(ctx, batch).Close())
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.FlightInstance, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	f, err := scanFlight(row)
	if err != nil {
		return nil, wrapErr("get flight", err)
	}
	return f, nil
}

func (r *PGFlightRepository) ListBySegment(ctx context.Context, segmentID string, departure *time.Time) ([]domain.FlightInstance, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if departure != nil {
		rows, err = r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_segment_id=$1 AND scheduled_departure=$2 ORDER BY scheduled_departure`, segmentID, *departure)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_segment_id=$1 ORDER BY scheduled_departure`, segmentID)
	}
	if err != nil {
		return nil, wrapErr("list flights", err)
	}
	defer rows.Close()

	flights := make([]domain.FlightInstance, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, wrapErr("list flights", err)
		}
		flights = append(flights, *f)
	}
	return flights, wrapErr("list flights", rows.Err())
}

func (r *PGFlightRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM flights`).Scan(&n)
	return n, wrapErr("count flights", err)
}

func (r *PGFlightRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM flights`)
	return wrapErr("delete flights", err)
}

func scanFlight(row pgx.Row) (*domain.FlightInstance, error) {
	var f domain.FlightInstance
	if err := row.Scan(&f.ID, &f.SegmentID, &f.ScheduledDeparture, &f.ScheduledArrival,
		&f.FirstClassBaseCost, &f.EconomyClassBaseCost, &f.NumFirstClassSeats, &f.NumEconomyClassSeats, &f.AirplaneTypeID); err != nil {
		return nil, err
	}
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
