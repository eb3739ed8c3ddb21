// Package service is the query engine over a dataset snapshot: pagination,
// epoch lookup, speed, nearest-to-now selection and geodetic derivation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"iss-tracker/internal/modules/tracker/geocode"
	"iss-tracker/internal/modules/tracker/repository"
	"iss-tracker/internal/modules/tracker/types"
)

var (
	ErrInvalidArgument = errors.New("limit and offset must be non-negative")
	ErrEpochNotFound   = errors.New("no data found for the specified epoch")
	ErrEmptyDataset    = errors.New("dataset is empty")
)

// earthRadiusKm is the spherical-Earth approximation used for altitude; no
// oblateness correction.
const earthRadiusKm = 6371.0

const unknownPlace = "Unknown"

// Paginate returns the slice [offset, offset+limit) clamped to the dataset
// bounds. Negative limit or offset is an ErrInvalidArgument.
func Paginate(dataset []types.StateVector, limit, offset int) ([]types.StateVector, error) {
	if limit < 0 || offset < 0 {
		return nil, ErrInvalidArgument
	}
	if offset > len(dataset) {
		offset = len(dataset)
	}
	end := offset + limit
	if end > len(dataset) {
		end = len(dataset)
	}
	return dataset[offset:end], nil
}

// FindByEpoch returns all records whose epoch string matches exactly
// (expected zero or one), or ErrEpochNotFound when there are none.
func FindByEpoch(dataset []types.StateVector, epoch string) ([]types.StateVector, error) {
	var matches []types.StateVector
	for _, sv := range dataset {
		if sv.Epoch == epoch {
			matches = append(matches, sv)
		}
	}
	if len(matches) == 0 {
		return nil, ErrEpochNotFound
	}
	return matches, nil
}

// InstantaneousSpeed is the Euclidean norm of the velocity vector, km/s.
func InstantaneousSpeed(sv types.StateVector) float64 {
	return math.Sqrt(sv.XDot*sv.XDot + sv.YDot*sv.YDot + sv.ZDot*sv.ZDot)
}

// AverageSpeed is the arithmetic mean of per-record instantaneous speeds.
// An empty dataset averages to 0.0 by definition.
func AverageSpeed(dataset []types.StateVector) float64 {
	if len(dataset) == 0 {
		return 0.0
	}
	var total float64
	for _, sv := range dataset {
		total += InstantaneousSpeed(sv)
	}
	return total / float64(len(dataset))
}

// NearestTo selects the record whose epoch is closest in time to the given
// instant. Records with unparseable epochs are skipped with a logged
// warning. Strict less-than keeps the first minimal element on ties.
func NearestTo(dataset []types.StateVector, now time.Time) (types.StateVector, error) {
	var (
		best      types.StateVector
		bestDelta time.Duration
		found     bool
	)
	for _, sv := range dataset {
		t, err := types.ParseEpoch(sv.Epoch)
		if err != nil {
			slog.Warn("skipping record with unparseable epoch", "epoch", sv.Epoch, "error", err)
			continue
		}
		delta := now.Sub(t)
		if delta < 0 {
			delta = -delta
		}
		if !found || delta < bestDelta {
			best = sv
			bestDelta = delta
			found = true
		}
	}
	if !found {
		return types.StateVector{}, ErrEmptyDataset
	}
	return best, nil
}

// Geodetic converts cartesian position to latitude/longitude (degrees) and
// altitude above the spherical Earth (km).
func Geodetic(sv types.StateVector) (lat, lon, altKm float64) {
	lat = math.Atan2(sv.Z, math.Sqrt(sv.X*sv.X+sv.Y*sv.Y)) * 180 / math.Pi
	lon = math.Atan2(sv.Y, sv.X) * 180 / math.Pi
	altKm = math.Sqrt(sv.X*sv.X+sv.Y*sv.Y+sv.Z*sv.Z) - earthRadiusKm
	return lat, lon, altKm
}

// EpochRange returns the dataset's coverage window from its first and last
// records (feed order is chronological).
func EpochRange(dataset []types.StateVector) (types.EpochRange, error) {
	if len(dataset) == 0 {
		return types.EpochRange{}, ErrEmptyDataset
	}
	first, err := types.ParseEpoch(dataset[0].Epoch)
	if err != nil {
		return types.EpochRange{}, err
	}
	last, err := types.ParseEpoch(dataset[len(dataset)-1].Epoch)
	if err != nil {
		return types.EpochRange{}, err
	}
	return types.EpochRange{First: first, Last: last}, nil
}

// Queries binds the pure query functions to a dataset source and a
// geocoder. Now is injectable for tests and defaults to time.Now.
type Queries struct {
	Source   repository.DatasetSource
	Geocoder geocode.Resolver
	Now      func() time.Time
}

func NewQueries(source repository.DatasetSource, geocoder geocode.Resolver) *Queries {
	return &Queries{Source: source, Geocoder: geocoder, Now: time.Now}
}

// Epochs returns the paginated dataset slice.
func (q *Queries) Epochs(ctx context.Context, limit, offset int) ([]types.StateVector, error) {
	dataset, err := q.Source.GetDataset(ctx)
	if err != nil {
		return nil, err
	}
	return Paginate(dataset, limit, offset)
}

// Epoch returns the records matching an exact epoch string.
func (q *Queries) Epoch(ctx context.Context, epoch string) ([]types.StateVector, error) {
	dataset, err := q.Source.GetDataset(ctx)
	if err != nil {
		return nil, err
	}
	return FindByEpoch(dataset, epoch)
}

// Speed returns the instantaneous speed of the record at the given epoch.
func (q *Queries) Speed(ctx context.Context, epoch string) (float64, error) {
	matches, err := q.Epoch(ctx, epoch)
	if err != nil {
		return 0, err
	}
	return InstantaneousSpeed(matches[0]), nil
}

// Location returns the geodetic position of the record at the given epoch.
// Geocoding failure degrades the place name to "Unknown".
func (q *Queries) Location(ctx context.Context, epoch string) (types.Location, error) {
	matches, err := q.Epoch(ctx, epoch)
	if err != nil {
		return types.Location{}, err
	}
	sv := matches[0]
	lat, lon, alt := Geodetic(sv)

	place, err := q.Geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		slog.Warn("reverse geocoding failed", "epoch", sv.Epoch, "lat", lat, "lon", lon, "error", err)
		place = unknownPlace
	}

	return types.Location{
		Epoch:       sv.Epoch,
		Latitude:    lat,
		Longitude:   lon,
		AltitudeKm:  alt,
		Geoposition: place,
	}, nil
}

// Nearest returns the record closest to the current instant.
func (q *Queries) Nearest(ctx context.Context) (types.StateVector, error) {
	dataset, err := q.Source.GetDataset(ctx)
	if err != nil {
		return types.StateVector{}, err
	}
	return NearestTo(dataset, q.Now().UTC())
}

// Range returns the coverage window, record count and average speed of the
// current dataset.
func (q *Queries) Range(ctx context.Context) (types.EpochRange, int, float64, error) {
	dataset, err := q.Source.GetDataset(ctx)
	if err != nil {
		return types.EpochRange{}, 0, 0, err
	}
	r, err := EpochRange(dataset)
	if err != nil {
		return types.EpochRange{}, 0, 0, err
	}
	return r, len(dataset), AverageSpeed(dataset), nil
}
