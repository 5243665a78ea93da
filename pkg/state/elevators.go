package state

import (
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/subpar/subpar/pkg/refdata"
	"github.com/subpar/subpar/pkg/transit"
	"golang.org/x/exp/slices"
)

type Outage struct {
	ID              refdata.EquipmentID `json:"id" groups:"basic,detailed"`
	Start           time.Time           `json:"start" groups:"basic,detailed"`
	ADA             bool                `json:"ada" groups:"basic,detailed"`
	EstimatedReturn time.Time           `json:"est_return" groups:"basic,detailed"`
	Reason          string              `json:"reason" groups:"basic,detailed"`
	Upcoming        bool                `json:"upcoming" groups:"basic,detailed"`
	Maintenance     bool                `json:"maintenance" groups:"basic,detailed"`
	AsOf            time.Time           `json:"asof" groups:"detailed"`
}

// Nearby is the closest accessible station in one direction.
type Nearby struct {
	ComplexID refdata.ComplexID `json:"complex_id" groups:"detailed"`
	Route     string            `json:"route" groups:"detailed"`
}

type Elevator struct {
	ID               refdata.EquipmentID `json:"id" groups:"basic,detailed"`
	ComplexID        refdata.ComplexID   `json:"complex_id" groups:"basic,detailed"`
	Lines            []string            `json:"lines" groups:"basic,detailed"`
	IsEscalator      bool                `json:"is_escalator" groups:"basic,detailed"`
	ADA              bool                `json:"ada" groups:"basic,detailed"`
	IsActive         bool                `json:"is_active" groups:"basic,detailed"`
	Description      string              `json:"desc" groups:"basic,detailed"`
	Serving          string              `json:"serving" groups:"detailed"`
	Nearby           []Nearby            `json:"nearby" groups:"detailed"`
	Buses            string              `json:"buses" groups:"detailed"`
	AlternativeRoute string              `json:"alt_desc" groups:"detailed"`
	Outage           *Outage             `json:"outage" groups:"basic,detailed"`
}

func newElevator(equipment *refdata.AccessEquipment) Elevator {
	elevator := Elevator{
		ID:               equipment.EquipmentID,
		ComplexID:        equipment.ComplexID,
		Lines:            []string(equipment.LinesServed),
		IsEscalator:      equipment.EquipmentType == refdata.Escalator,
		ADA:              bool(equipment.ADA),
		IsActive:         bool(equipment.Active),
		Description:      equipment.ShortDescription,
		Serving:          equipment.Serving,
		Nearby:           []Nearby{},
		Buses:            equipment.BusConnections,
		AlternativeRoute: equipment.AlternativeRoute,
	}

	for _, next := range []string{equipment.NextADANorth, equipment.NextADASouth} {
		if nearby, ok := parseNearby(next); ok {
			elevator.Nearby = append(elevator.Nearby, nearby)
		}
	}

	return elevator
}

// parseNearby reads "117, L" style references.
func parseNearby(s string) (Nearby, bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Nearby{}, false
	}

	complex, err := refdata.ParseComplexID(strings.TrimSpace(parts[0]))
	if err != nil {
		return Nearby{}, false
	}

	return Nearby{ComplexID: complex, Route: strings.TrimSpace(parts[1])}, true
}

func newOutage(outage *refdata.AccessOutage) *Outage {
	return &Outage{
		ID:              outage.EquipmentID,
		Start:           outage.OutageDate.Time,
		ADA:             bool(outage.ADA),
		EstimatedReturn: outage.EstimatedReturn.Time,
		Reason:          outage.Reason,
		Upcoming:        bool(outage.Upcoming),
		Maintenance:     bool(outage.Maintenance),
		AsOf:            outage.AsOf,
	}
}

// ElevatorStates joins the equipment directory with the latest outage report.
// summaryMu is always taken before mu.
type ElevatorStates struct {
	complexes map[refdata.EquipmentID]refdata.ComplexID

	mu        sync.RWMutex
	elevators map[refdata.ComplexID][]Elevator

	summaryMu           sync.RWMutex
	summary             []refdata.ComplexID
	summaryComputations int
}

func NewElevatorStates(equipment []refdata.AccessEquipment) *ElevatorStates {
	e := &ElevatorStates{
		complexes: make(map[refdata.EquipmentID]refdata.ComplexID, len(equipment)),
		elevators: map[refdata.ComplexID][]Elevator{},
	}

	for i := range equipment {
		item := &equipment[i]
		e.complexes[item.EquipmentID] = item.ComplexID
		e.elevators[item.ComplexID] = append(e.elevators[item.ComplexID], newElevator(item))
	}

	return e
}

// Update replaces every outage with the given report.
func (e *ElevatorStates) Update(outages []refdata.AccessOutage) {
	e.summaryMu.Lock()
	defer e.summaryMu.Unlock()
	e.summary = nil

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, elevators := range e.elevators {
		for i := range elevators {
			elevators[i].Outage = nil
		}
	}

	for i := range outages {
		outage := &outages[i]

		complex, ok := e.complexes[outage.EquipmentID]
		if !ok {
			log.Warn().Err(transit.NewError(transit.Lookup, nil)).Str("equipment", string(outage.EquipmentID)).Msg("Outage for unknown equipment")
			continue
		}

		elevators, ok := e.elevators[complex]
		if !ok {
			log.Warn().Err(transit.NewError(transit.Lookup, nil)).Int("complex", int(complex)).Msg("Outage for unknown complex")
			continue
		}

		index := slices.IndexFunc(elevators, func(el Elevator) bool { return el.ID == outage.EquipmentID })
		if index < 0 {
			log.Warn().
				Err(transit.NewError(transit.Lookup, nil)).
				Int("complex", int(complex)).
				Str("equipment", string(outage.EquipmentID)).
				Msg("Equipment missing from its complex")
			continue
		}

		elevators[index].Outage = newOutage(outage)
	}
}

// Get returns a copy of the complex's equipment. Outages are replaced on update,
// never modified, so the copy may share them.
func (e *ElevatorStates) Get(complex refdata.ComplexID) ([]Elevator, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	elevators, ok := e.elevators[complex]
	if !ok {
		return nil, false
	}

	var out []Elevator
	if err := copier.Copy(&out, &elevators); err != nil {
		log.Error().Err(err).Int("complex", int(complex)).Msg("Failed to copy elevators")
		return nil, false
	}
	return out, true
}

// Summary lists the complexes with at least one outage. It is computed at most
// once per Update.
func (e *ElevatorStates) Summary() []refdata.ComplexID {
	e.summaryMu.RLock()
	if e.summary != nil {
		summary := e.summary
		e.summaryMu.RUnlock()
		return summary
	}
	e.summaryMu.RUnlock()

	e.summaryMu.Lock()
	defer e.summaryMu.Unlock()

	if e.summary == nil {
		e.summary = e.computeSummary()
		e.summaryComputations++
	}
	return e.summary
}

func (e *ElevatorStates) computeSummary() []refdata.ComplexID {
	e.mu.RLock()
	defer e.mu.RUnlock()

	outages := []refdata.ComplexID{}
	for complex, elevators := range e.elevators {
		for _, elevator := range elevators {
			if elevator.Outage != nil {
				outages = append(outages, complex)
				break
			}
		}
	}

	slices.Sort(outages)
	return outages
}
