package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Domenick1991/flightroutes/internal/domain"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS airport_code_mappings (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS flight_segments (
		id TEXT PRIMARY KEY,
		origin_code TEXT NOT NULL,
		dest_code TEXT NOT NULL,
		miles INTEGER NOT NULL CHECK (miles > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS flight_segments_route_idx ON flight_segments (origin_code, dest_code)`,
	`CREATE TABLE IF NOT EXISTS flights (
		id TEXT PRIMARY KEY,
		flight_segment_id TEXT NOT NULL,
		scheduled_departure INTEGER NOT NULL,
		scheduled_arrival INTEGER NOT NULL,
		first_class_base_cost INTEGER NOT NULL,
		economy_class_base_cost INTEGER NOT NULL,
		num_first_class_seats INTEGER NOT NULL,
		num_economy_class_seats INTEGER NOT NULL,
		airplane_type_id TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS flights_segment_departure_idx ON flights (flight_segment_id, scheduled_departure)`,
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Times are stored as unix seconds.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection so ":memory:" databases are shared
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, wrapErr("create schema", err)
		}
	}
	return db, nil
}

// NewSQLiteStore builds the SQLite repositories over one handle.
func NewSQLiteStore(db *sql.DB) Store {
	return Store{
		Airports: &SQLiteAirportRepository{db: db},
		Segments: &SQLiteSegmentRepository{db: db},
		Flights:  &SQLiteFlightRepository{db: db},
	}
}

type SQLiteAirportRepository struct {
	db *sql.DB
}

func (r *SQLiteAirportRepository) Insert(ctx context.Context, airport domain.AirportCodeMapping) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO airport_code_mappings (code, name) VALUES (?, ?)`, airport.Code, airport.Name)
	return wrapErr("insert airport", err)
}

func (r *SQLiteAirportRepository) List(ctx context.Context) ([]domain.AirportCodeMapping, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, name FROM airport_code_mappings ORDER BY code`)
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

func (r *SQLiteAirportRepository) Count(ctx context.Context) (int64, error) {
	return sqliteCount(ctx, r.db, "airport_code_mappings")
}

func (r *SQLiteAirportRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM airport_code_mappings`)
	return wrapErr("delete airports", err)
}

type SQLiteSegmentRepository struct {
	db *sql.DB
}

func (r *SQLiteSegmentRepository) Insert(ctx context.Context, segment domain.FlightSegment) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO flight_segments (id, origin_code, dest_code, miles) VALUES (?, ?, ?, ?)`,
		segment.ID, segment.OriginCode, segment.DestCode, segment.Miles)
	return wrapErr("insert segment", err)
}

func (r *SQLiteSegmentRepository) GetByID(ctx context.Context, id string) (*domain.FlightSegment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, origin_code, dest_code, miles FROM flight_segments WHERE id=?`, id)
	var s domain.FlightSegment
	if err := row.Scan(&s.ID, &s.OriginCode, &s.DestCode, &s.Miles); err != nil {
		return nil, wrapErr("get segment", err)
	}
	return &s, nil
}

func (r *SQLiteSegmentRepository) GetByRoute(ctx context.Context, originCode, destCode string) (*domain.FlightSegment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, origin_code, dest_code, miles FROM flight_segments WHERE origin_code=? AND dest_code=? LIMIT 1`, originCode, destCode)
	var s domain.FlightSegment
	if err := row.Scan(&s.ID, &s.OriginCode, &s.DestCode, &s.Miles); err != nil {
		return nil, wrapErr("get segment by route", err)
	}
	return &s, nil
}

func (r *SQLiteSegmentRepository) Count(ctx context.Context) (int64, error) {
	return sqliteCount(ctx, r.db, "flight_segments")
}

func (r *SQLiteSegmentRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM flight_segments`)
	return wrapErr("delete segments", err)
}

type SQLiteFlightRepository struct {
	db *sql.DB
}

func (r *SQLiteFlightRepository) InsertBatch(ctx context.Context, flights []domain.FlightInstance) error {
	if len(flights) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("insert flights", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO flights (`+flightColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return wrapErr("insert flights", err)
	}
	defer stmt.Close()

	for _, f := range flights {
		if _, err := stmt.ExecContext(ctx, f.ID, f.SegmentID, f.ScheduledDeparture.Unix(), f.ScheduledArrival.Unix(),
			f.FirstClassBaseCost, f.EconomyClassBaseCost, f.NumFirstClassSeats, f.NumEconomyClassSeats, f.AirplaneTypeID); err != nil {
			return wrapErr("insert flights", err)
		}
	}
	return wrapErr("insert flights", tx.Commit())
}

func (r *SQLiteFlightRepository) GetByID(ctx context.Context, id string) (*domain.FlightInstance, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=?`, id)
	f, err := scanSQLiteFlight(row)
	if err != nil {
		return nil, wrapErr("get flight", err)
	}
	return f, nil
}

func (r *SQLiteFlightRepository) ListBySegment(ctx context.Context, segmentID string, departure *time.Time) ([]domain.FlightInstance, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if departure != nil {
		rows, err = r.db.QueryContext(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_segment_id=? AND scheduled_departure=? ORDER BY scheduled_departure`, segmentID, departure.Unix())
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_segment_id=? ORDER BY scheduled_departure`, segmentID)
	}
	if err != nil {
		return nil, wrapErr("list flights", err)
	}
	defer rows.Close()

	flights := make([]domain.FlightInstance, 0)
	for rows.Next() {
		f, err := scanSQLiteFlight(rows)
		if err != nil {
			return nil, wrapErr("list flights", err)
		}
		flights = append(flights, *f)
	}
	return flights, wrapErr("list flights", rows.Err())
}

func (r *SQLiteFlightRepository) Count(ctx context.Context) (int64, error) {
	return sqliteCount(ctx, r.db, "flights")
}

func (r *SQLiteFlightRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM flights`)
	return wrapErr("delete flights", err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteFlight(row rowScanner) (*domain.FlightInstance, error) {
	var (
		f        domain.FlightInstance
		dep, arr int64
	)
	if err := row.Scan(&f.ID, &f.SegmentID, &dep, &arr,
		&f.FirstClassBaseCost, &f.EconomyClassBaseCost, &f.NumFirstClassSeats, &f.NumEconomyClassSeats, &f.AirplaneTypeID); err != nil {
		return nil, err
	}
	f.ScheduledDeparture = time.Unix(dep, 0)
	f.ScheduledArrival = time.Unix(arr, 0)
	return &f, nil
}

func sqliteCount(ctx context.Context, db *sql.DB, table string) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT count(*) FROM `+table).Scan(&n)
	return n, wrapErr("count "+table, err)
}

var (
	_ AirportRepository = (*SQLiteAirportRepository)(nil)
	_ SegmentRepository = (*SQLiteSegmentRepository)(nil)
	_ FlightRepository  = (*SQLiteFlightRepository)(nil)
)
