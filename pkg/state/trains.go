package state

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/subpar/subpar/pkg/refdata"
	"github.com/subpar/subpar/pkg/transit"
	"golang.org/x/exp/slices"
)

// StaleAfter is how old an Upcoming message may get before it is evicted.
const StaleAfter = 45 * time.Second

type upcomingByTrip map[transit.TripKey]*transit.Upcoming

// TrainStates indexes upcoming arrivals by complex. All access goes through a single mutex.
type TrainStates struct {
	stops map[transit.StopId]refdata.ComplexID

	mu     sync.Mutex
	trains map[refdata.ComplexID]upcomingByTrip

	now func() time.Time
}

func NewTrainStates(stops map[transit.StopId]refdata.ComplexID) *TrainStates {
	return &TrainStates{
		stops:  stops,
		trains: map[refdata.ComplexID]upcomingByTrip{},
		now:    time.Now,
	}
}

// StopIndex maps every stop id listed by the complex directory to its complex.
func StopIndex(complexes []refdata.ComplexInfo) map[transit.StopId]refdata.ComplexID {
	stops := map[transit.StopId]refdata.ComplexID{}
	for _, complex := range complexes {
		for _, stop := range complex.StopIDs {
			stops[transit.StopId(stop)] = complex.ComplexID
		}
	}
	return stops
}

// Ingest folds the schedules of a batch into the index.
func (t *TrainStates) Ingest(batch *transit.Batch) {
	candidates := t.candidates(batch)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.merge(candidates)
}

// candidates builds the per complex view of one batch. Every known complex gets
// an entry, even an empty one. A trip listing several stops in the same complex
// keeps the last one.
func (t *TrainStates) candidates(batch *transit.Batch) map[refdata.ComplexID]upcomingByTrip {
	candidates := make(map[refdata.ComplexID]upcomingByTrip, len(t.stops))
	for _, complex := range t.stops {
		if candidates[complex] == nil {
			candidates[complex] = upcomingByTrip{}
		}
	}

	for _, schedule := range batch.Schedules() {
		for _, plan := range schedule.Stops {
			stop := plan.Stop.Parent()

			complex, ok := t.stops[stop]
			if !ok {
				log.Warn().Str("stop", string(stop)).Str("trip", schedule.Trip.Text).Msg("Schedule had unknown stop id")
				continue
			}

			candidates[complex][schedule.Trip.Key()] = &transit.Upcoming{
				Trip:    schedule.Trip,
				TripID:  schedule.Trip.Text,
				Route:   schedule.Trip.Route(),
				Stop:    stop,
				Arrival: plan.Times.T0(),
				Message: batch.Timestamp,
			}
		}
	}

	return candidates
}

func (t *TrainStates) merge(candidates map[refdata.ComplexID]upcomingByTrip) {
	cutoff := t.now().Add(-StaleAfter)

	for complex, incoming := range candidates {
		existing, ok := t.trains[complex]
		if !ok {
			t.trains[complex] = incoming
			continue
		}

		for key, candidate := range incoming {
			slot, ok := existing[key]
			switch {
			case !ok:
				existing[key] = candidate
			case !candidate.Message.Before(slot.Message):
				if slot.Stop == candidate.Stop {
					slot.Message = candidate.Message
					slot.Arrival = candidate.Arrival
				} else {
					log.Warn().
						Err(transit.NewError(transit.OrderingAnomaly, nil).WithTrip(candidate.TripID)).
						Str("stored_stop", string(slot.Stop)).
						Str("incoming_stop", string(candidate.Stop)).
						Int("complex", int(complex)).
						Msg("Stop mismatch, keeping stored upcoming")
				}
			default:
				log.Warn().
					Err(transit.NewError(transit.OrderingAnomaly, nil).WithTrip(candidate.TripID)).
					Time("stored", slot.Message).
					Time("incoming", candidate.Message).
					Msg("Incoming message older than stored one, discarding")
			}
		}

		for key, upcoming := range existing {
			if !upcoming.Message.After(cutoff) {
				delete(existing, key)
			}
		}
	}
}

// Get returns the complex's upcoming arrivals sorted by arrival time, or false
// if the complex has never been seen.
func (t *TrainStates) Get(complex refdata.ComplexID) ([]transit.Upcoming, bool) {
	t.mu.Lock()
	trips, ok := t.trains[complex]
	if !ok {
		t.mu.Unlock()
		return nil, false
	}

	upcoming := make([]transit.Upcoming, 0, len(trips))
	for _, u := range trips {
		upcoming = append(upcoming, *u)
	}
	t.mu.Unlock()

	slices.SortFunc(upcoming, func(a, b transit.Upcoming) int {
		return a.Arrival.Compare(b.Arrival)
	})

	return upcoming, true
}

// Len counts every upcoming entry held.
func (t *TrainStates) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, trips := range t.trains {
		n += len(trips)
	}
	return n
}

// ComplexOf resolves a station or platform id to its complex.
func (t *TrainStates) ComplexOf(stop transit.StopId) (refdata.ComplexID, bool) {
	complex, ok := t.stops[stop.Parent()]
	return complex, ok
}
