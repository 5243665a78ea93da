package transit

import (
	"fmt"
	"time"
)

type PositionStatus int

const (
	Nothing PositionStatus = iota
	At
	Near
	EnRoute
)

func (s PositionStatus) String() string {
	switch s {
	case At:
		return "at"
	case Near:
		return "near"
	case EnRoute:
		return "en route"
	}
	return "nothing"
}

// Position is a vehicle's reported place on its trip.
type Position struct {
	Trip     TripId
	Observed time.Time
	Stop     StopId
	Sequence *uint32
	Status   PositionStatus
}

// StopPlan is one predicted stop of a trip.
type StopPlan struct {
	Stop  StopId
	Times Times
}

// Schedule is a trip's predicted stops, in the order the trip makes them.
type Schedule struct {
	Trip  TripId
	AsOf  time.Time
	Stops []StopPlan
}

type UpdateKind int

const (
	AlertUpdate UpdateKind = iota
	PositionUpdate
	ScheduleUpdate
)

func (k UpdateKind) String() string {
	switch k {
	case PositionUpdate:
		return "position"
	case ScheduleUpdate:
		return "schedule"
	}
	return "alert"
}

// Update is one decoded feed entity. Only the field matching Kind is set.
type Update struct {
	Kind     UpdateKind
	Position *Position
	Schedule *Schedule
}

func NewPositionUpdate(p Position) Update {
	return Update{Kind: PositionUpdate, Position: &p}
}

func NewScheduleUpdate(s Schedule) Update {
	return Update{Kind: ScheduleUpdate, Schedule: &s}
}

func NewAlertUpdate() Update {
	return Update{Kind: AlertUpdate}
}

// EntityResult holds either a decoded update or the error decoding it.
type EntityResult struct {
	Update Update
	Err    error
}

func (r EntityResult) OK() bool {
	return r.Err == nil
}

// Batch is the decoded content of one feed message.
type Batch struct {
	Timestamp time.Time
	Updates   []EntityResult
}

// Counts tallies positions, schedules, alerts and failed entities.
type Counts struct {
	Positions int
	Schedules int
	Alerts    int
	Errors    int
}

func (b *Batch) Counts() Counts {
	var c Counts
	for _, result := range b.Updates {
		if !result.OK() {
			c.Errors++
			continue
		}
		switch result.Update.Kind {
		case PositionUpdate:
			c.Positions++
		case ScheduleUpdate:
			c.Schedules++
		default:
			c.Alerts++
		}
	}
	return c
}

func (b *Batch) Schedules() []*Schedule {
	var schedules []*Schedule
	for _, result := range b.Updates {
		if result.OK() && result.Update.Kind == ScheduleUpdate {
			schedules = append(schedules, result.Update.Schedule)
		}
	}
	return schedules
}

func (b *Batch) Positions() []*Position {
	var positions []*Position
	for _, result := range b.Updates {
		if result.OK() && result.Update.Kind == PositionUpdate {
			positions = append(positions, result.Update.Position)
		}
	}
	return positions
}

func (b *Batch) Errors() []error {
	var errs []error
	for _, result := range b.Updates {
		if !result.OK() {
			errs = append(errs, result.Err)
		}
	}
	return errs
}

func (c Counts) String() string {
	return fmt.Sprintf("p=%d s=%d a=%d e=%d", c.Positions, c.Schedules, c.Alerts, c.Errors)
}

// Upcoming is the next predicted arrival of a trip at a station.
type Upcoming struct {
	Trip    TripId    `json:"-"`
	TripID  string    `json:"trip"`
	Route   Route     `json:"route"`
	Stop    StopId    `json:"stop"`
	Arrival time.Time `json:"arrival"`
	Message time.Time `json:"message"`
}
