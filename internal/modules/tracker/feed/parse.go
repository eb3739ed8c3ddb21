package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"iss-tracker/internal/modules/tracker/types"
)

// ErrNoStateVectors reports an OEM document whose stateVector list is absent
// or empty. Callers treat this as "no data available", not as a valid
// zero-epoch dataset.
var ErrNoStateVectors = errors.New("no state vectors found in OEM data")

// oemValue is a units-attributed numeric element, e.g.
// <X units="km">2674.73145218746</X>.
type oemValue struct {
	Units string `xml:"units,attr"`
	Text  string `xml:",chardata"`
}

type oemStateVector struct {
	Epoch string   `xml:"EPOCH"`
	X     oemValue `xml:"X"`
	Y     oemValue `xml:"Y"`
	Z     oemValue `xml:"Z"`
	XDot  oemValue `xml:"X_DOT"`
	YDot  oemValue `xml:"Y_DOT"`
	ZDot  oemValue `xml:"Z_DOT"`
}

// oemDocument mirrors the nesting of an Orbit Ephemeris Message:
// ndm > oem > body > segment > data > stateVector*. Levels missing from the
// input simply decode to zero values, so a malformed-but-well-formed document
// falls through to the empty-list check instead of failing mid-walk.
type oemDocument struct {
	XMLName xml.Name `xml:"ndm"`
	Oem     struct {
		Body struct {
			Segment struct {
				Data struct {
					StateVectors []oemStateVector `xml:"stateVector"`
				} `xml:"data"`
			} `xml:"segment"`
		} `xml:"body"`
	} `xml:"oem"`
}

// ParseOEM decodes an OEM XML document into state-vector records, preserving
// document order.
//
// Per-record policy: a record whose EPOCH is empty or whose numeric fields do
// not parse is dropped with a logged warning and processing continues. Only a
// document with no stateVector elements at all fails, with ErrNoStateVectors.
func ParseOEM(r io.Reader) ([]types.StateVector, error) {
	var doc oemDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode OEM document: %w", err)
	}

	raw := doc.Oem.Body.Segment.Data.StateVectors
	if len(raw) == 0 {
		return nil, ErrNoStateVectors
	}

	out := make([]types.StateVector, 0, len(raw))
	for _, sv := range raw {
		rec, err := convertStateVector(sv)
		if err != nil {
			slog.Warn("dropping malformed state vector", "epoch", sv.Epoch, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func convertStateVector(sv oemStateVector) (types.StateVector, error) {
	if sv.Epoch == "" {
		return types.StateVector{}, errors.New("missing EPOCH")
	}

	rec := types.StateVector{Epoch: sv.Epoch}
	fields := []struct {
		name string
		text string
		dst  *float64
	}{
		{"X", sv.X.Text, &rec.X},
		{"Y", sv.Y.Text, &rec.Y},
		{"Z", sv.Z.Text, &rec.Z},
		{"X_DOT", sv.XDot.Text, &rec.XDot},
		{"Y_DOT", sv.YDot.Text, &rec.YDot},
		{"Z_DOT", sv.ZDot.Text, &rec.ZDot},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.text), 64)
		if err != nil {
			return types.StateVector{}, fmt.Errorf("parse %s %q: %w", f.name, f.text, err)
		}
		*f.dst = v
	}
	return rec, nil
}
