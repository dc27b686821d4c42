package domain

// FlightSegment is a directed route between two airports, independent of date.
type FlightSegment struct {
	ID         string `json:"id"`
	OriginCode string `json:"origin_port"`
	DestCode   string `json:"dest_port"`
	Miles      int    `json:"miles"`
}
