package kafka

import "time"

const (
	EventFlightsLoaded  = "flights_loaded"
	EventFlightsDropped = "flights_dropped"
	EventLoadFailed     = "load_failed"
)

// LoadEvent reports the outcome of a load cycle or a drop.
type LoadEvent struct {
	Type            string    `json:"type"`
	Days            int       `json:"days,omitempty"`
	Airports        int       `json:"airports,omitempty"`
	Segments        int       `json:"segments,omitempty"`
	Flights         int       `json:"flights,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Error           string    `json:"error,omitempty"`
	At              time.Time `json:"at"`
}

// LoadRequest asks the worker to run a load. Days <= 0 means the configured default.
type LoadRequest struct {
	Days int `json:"days"`
}
