package mileage

import "time"

// CruiseSpeed is the average speed, in miles per hour, used for schedules.
const CruiseSpeed = 600

// Arrival returns departure plus the flight time for miles at CruiseSpeed.
// Whole hours are added first, then the remaining fraction as whole minutes
// (truncated).
func Arrival(departure time.Time, miles int) time.Time {
	hours := miles / CruiseSpeed
	minutes := (miles % CruiseSpeed) * 60 / CruiseSpeed
	return departure.Add(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute)
}
