package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var pgSchema = []string{
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
		scheduled_departure TIMESTAMPTZ NOT NULL,
		scheduled_arrival TIMESTAMPTZ NOT NULL,
		first_class_base_cost INTEGER NOT NULL,
		economy_class_base_cost INTEGER NOT NULL,
		num_first_class_seats INTEGER NOT NULL,
		num_economy_class_seats INTEGER NOT NULL,
		airplane_type_id TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS flights_segment_departure_idx ON flights (flight_segment_id, scheduled_departure)`,
}

// EnsureSchema creates the tables if they are missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range pgSchema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return wrapErr("create schema", err)
		}
	}
	return nil
}

// NewPGStore builds the PostgreSQL repositories over one pool.
func NewPGStore(db *pgxpool.Pool) Store {
	return Store{
		Airports: NewAirportRepository(db),
		Segments: NewSegmentRepository(db),
		Flights:  NewFlightRepository(db),
	}
}
