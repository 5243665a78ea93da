package transit

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	Transport Kind = iota
	Timeout
	Status
	Decode
	ScheduleDecode
	Lookup
	OrderingAnomaly
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Timeout:
		return "timeout"
	case Status:
		return "status"
	case Decode:
		return "decode"
	case ScheduleDecode:
		return "schedule decode"
	case Lookup:
		return "lookup"
	case OrderingAnomaly:
		return "ordering anomaly"
	}
	return "unknown"
}

// Error carries a Kind and whatever context the failing step knew about.
// Entity is -1 when the error is not tied to a feed entity.
type Error struct {
	Kind   Kind
	Feed   string
	Entity int
	Field  string
	Trip   string
	Err    error
}

func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Entity: -1, Err: err}
}

func (e *Error) WithFeed(feed string) *Error {
	e.Feed = feed
	return e
}

func (e *Error) WithEntity(index int) *Error {
	e.Entity = index
	return e
}

func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

func (e *Error) WithTrip(trip string) *Error {
	e.Trip = trip
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())

	if e.Feed != "" {
		fmt.Fprintf(&b, " feed=%s", e.Feed)
	}
	if e.Entity >= 0 {
		fmt.Fprintf(&b, " entity=%d", e.Entity)
	}
	if e.Trip != "" {
		fmt.Fprintf(&b, " trip=%s", e.Trip)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field=%s", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err, or anything it wraps, is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Missing is the error for an absent required field.
func Missing(field string) *Error {
	return NewError(Decode, errors.New("missing")).WithField(field)
}
