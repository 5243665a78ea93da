package transit

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoTimes = errors.New("stop times have neither arrival nor departure")

// Times is First{departure}, Mid{arrival, departure} or Last{arrival}.
// The zero value is not valid; build one with NewTimes.
type Times struct {
	arrival   *time.Time
	departure *time.Time
}

func NewTimes(arrival, departure *time.Time) (Times, error) {
	if arrival == nil && departure == nil {
		return Times{}, ErrNoTimes
	}
	return Times{arrival: arrival, departure: departure}, nil
}

func FirstStop(departure time.Time) Times {
	return Times{departure: &departure}
}

func MidStop(arrival, departure time.Time) Times {
	return Times{arrival: &arrival, departure: &departure}
}

func LastStop(arrival time.Time) Times {
	return Times{arrival: &arrival}
}

func (t Times) IsFirst() bool { return t.arrival == nil && t.departure != nil }
func (t Times) IsMid() bool   { return t.arrival != nil && t.departure != nil }
func (t Times) IsLast() bool  { return t.arrival != nil && t.departure == nil }

func (t Times) Arrival() (time.Time, bool) {
	if t.arrival == nil {
		return time.Time{}, false
	}
	return *t.arrival, true
}

func (t Times) Departure() (time.Time, bool) {
	if t.departure == nil {
		return time.Time{}, false
	}
	return *t.departure, true
}

// T0 is the arrival time, or the departure time at the first stop.
func (t Times) T0() time.Time {
	if t.arrival != nil {
		return *t.arrival
	}
	if t.departure != nil {
		return *t.departure
	}
	return time.Time{}
}

func (t Times) String() string {
	const layout = "15:04:05"
	switch {
	case t.IsMid():
		return fmt.Sprintf("arr %s dep %s", t.arrival.Format(layout), t.departure.Format(layout))
	case t.IsLast():
		return fmt.Sprintf("arr %s", t.arrival.Format(layout))
	case t.IsFirst():
		return fmt.Sprintf("dep %s", t.departure.Format(layout))
	}
	return "no times"
}
