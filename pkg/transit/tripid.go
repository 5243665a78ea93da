package transit

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Direction int

const (
	North Direction = iota // also East
	South
)

func (d Direction) String() string {
	if d == South {
		return "S"
	}
	return "N"
}

// Route is the line letter without local/express distinction, e.g. "6" or "GS".
type Route string

const maxRouteLength = 3

// TripParts is the parsed form of a trip id text.
type TripParts struct {
	Route     Route
	Direction Direction
	Start     TimeOfDay
}

// ParseTripParts reads `<origin>_<route>.<direction>[shape]`, e.g. 134200_L..N.
func ParseTripParts(text string) (TripParts, error) {
	underscore := strings.IndexByte(text, '_')
	dot := strings.IndexByte(text, '.')

	if underscore < 0 || dot < 0 {
		return TripParts{}, fmt.Errorf("trip parts %q: missing delimiter(s)", text)
	}
	if underscore >= dot {
		return TripParts{}, fmt.Errorf("trip parts %q: out of order", text)
	}

	origin, route, tail := text[:underscore], text[underscore+1:dot], text[dot:]

	var direction Direction
	switch {
	case strings.Contains(tail, ".N"):
		direction = North
	case strings.Contains(tail, ".S"):
		direction = South
	default:
		return TripParts{}, fmt.Errorf("trip parts %q: no direction in tail %q", text, tail)
	}

	if len(route) > maxRouteLength {
		return TripParts{}, fmt.Errorf("trip parts %q: route %q too long", text, route)
	}

	start, err := ParseOriginOffset(origin)
	if err != nil {
		return TripParts{}, fmt.Errorf("trip parts %q: %w", text, err)
	}

	return TripParts{
		Route:     Route(route),
		Direction: direction,
		Start:     start,
	}, nil
}

// TripKey identifies a trip regardless of how its text was written.
type TripKey struct {
	Parts TripParts
	Day   Date
}

// TripId is a trip id text along with its parsed parts and service day.
type TripId struct {
	Text  string
	Parts TripParts
	Day   Date
}

func ParseTripId(text string, day Date) (TripId, error) {
	if text == "" {
		return TripId{}, errors.New("empty trip id")
	}

	parts, err := ParseTripParts(text)
	if err != nil {
		return TripId{}, err
	}

	return TripId{Text: text, Parts: parts, Day: day}, nil
}

func (t TripId) Key() TripKey {
	return TripKey{Parts: t.Parts, Day: t.Day}
}

func (t TripId) Equal(other TripId) bool {
	return t.Key() == other.Key()
}

func (t TripId) Route() Route {
	return t.Parts.Route
}

func (t TripId) Direction() Direction {
	return t.Parts.Direction
}

// Origin is the instant the trip left its first stop.
func (t TripId) Origin() time.Time {
	return t.Day.At(t.Parts.Start)
}

func (t TripId) String() string {
	return fmt.Sprintf("%s%s (%s %s)", t.Parts.Route, t.Parts.Direction, t.Day, t.Parts.Start)
}
