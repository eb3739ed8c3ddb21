package types

import "time"

// StateVector is one orbital sample from the OEM ephemeris feed: position in
// kilometers and velocity in km/s at the given epoch. JSON field names match
// the upstream OEM tag names so API responses stay byte-compatible with the
// feed's vocabulary.
type StateVector struct {
	Epoch string  `json:"EPOCH"`
	X     float64 `json:"X"`
	Y     float64 `json:"Y"`
	Z     float64 `json:"Z"`
	XDot  float64 `json:"X_DOT"`
	YDot  float64 `json:"Y_DOT"`
	ZDot  float64 `json:"Z_DOT"`
}

// epochLayout matches the feed's day-of-year timestamps, e.g.
// "2025-058T11:53:00.000Z". time.Parse accepts the fractional second even
// though the layout does not spell it out.
const epochLayout = "2006-002T15:04:05Z"

// ParseEpoch converts a feed epoch string to a UTC instant.
func ParseEpoch(epoch string) (time.Time, error) {
	return time.Parse(epochLayout, epoch)
}

// Location is the geodetic position derived from a state vector, with a
// reverse-geocoded place name (or "Unknown" when lookup fails).
type Location struct {
	Epoch       string  `json:"epoch"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	AltitudeKm  float64 `json:"altitude_km"`
	Geoposition string  `json:"geoposition"`
}

// EpochRange is the coverage window of a dataset.
type EpochRange struct {
	First time.Time `json:"first_epoch"`
	Last  time.Time `json:"last_epoch"`
}
