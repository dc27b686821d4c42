package domain

import "time"

// DisplayTimeLayout is how scheduled times are rendered in FlightView.
const DisplayTimeLayout = "Mon Jan 02 15:04:05 MST 2006"

// FlightInstance is one dated departure of a FlightSegment.
type FlightInstance struct {
	ID                   string    `json:"id"`
	SegmentID            string    `json:"flight_segment_id"`
	ScheduledDeparture   time.Time `json:"scheduled_departure_time"`
	ScheduledArrival     time.Time `json:"scheduled_arrival_time"`
	FirstClassBaseCost   int       `json:"first_class_base_cost"`
	EconomyClassBaseCost int       `json:"economy_class_base_cost"`
	NumFirstClassSeats   int       `json:"num_first_class_seats"`
	NumEconomyClassSeats int       `json:"num_economy_class_seats"`
	AirplaneTypeID       string    `json:"airplane_type_id"`
}

// FlightView is a FlightInstance as returned to callers: the owning segment is
// embedded and the scheduled times are display strings.
type FlightView struct {
	ID                   string        `json:"id"`
	SegmentID            string        `json:"flight_segment_id"`
	ScheduledDeparture   string        `json:"scheduled_departure_time"`
	ScheduledArrival     string        `json:"scheduled_arrival_time"`
	FirstClassBaseCost   int           `json:"first_class_base_cost"`
	EconomyClassBaseCost int           `json:"economy_class_base_cost"`
	NumFirstClassSeats   int           `json:"num_first_class_seats"`
	NumEconomyClassSeats int           `json:"num_economy_class_seats"`
	AirplaneTypeID       string        `json:"airplane_type_id"`
	FlightSegment        FlightSegment `json:"flight_segment"`
}

// NewFlightView reshapes a stored flight for callers.
func NewFlightView(f FlightInstance, segment FlightSegment) FlightView {
	return FlightView{
		ID:                   f.ID,
		SegmentID:            f.SegmentID,
		ScheduledDeparture:   f.ScheduledDeparture.Format(DisplayTimeLayout),
		ScheduledArrival:     f.ScheduledArrival.Format(DisplayTimeLayout),
		FirstClassBaseCost:   f.FirstClassBaseCost,
		EconomyClassBaseCost: f.EconomyClassBaseCost,
		NumFirstClassSeats:   f.NumFirstClassSeats,
		NumEconomyClassSeats: f.NumEconomyClassSeats,
		AirplaneTypeID:       f.AirplaneTypeID,
		FlightSegment:        segment,
	}
}
