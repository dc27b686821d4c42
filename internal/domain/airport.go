package domain

// AirportCodeMapping ties an airport code to its display name. Code is the natural key.
type AirportCodeMapping struct {
	Code string `json:"airport_code"`
	Name string `json:"airport_name"`
}
