package state

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/subpar/subpar/pkg/metrics"
	"github.com/subpar/subpar/pkg/poller"
	"github.com/subpar/subpar/pkg/refdata"
	"github.com/subpar/subpar/pkg/transit"
)

// States is built once at startup and shared by the ingest loop and the API.
type States struct {
	Trains    *TrainStates
	Elevators *ElevatorStates
	Complexes *ComplexStates

	Metrics *metrics.Collector
}

func NewStates(
	complexes []refdata.ComplexInfo,
	equipment []refdata.AccessEquipment,
	outages []refdata.AccessOutage,
	entrances []refdata.SubwayEntrance,
) *States {
	s := &States{
		Trains:    NewTrainStates(StopIndex(complexes)),
		Elevators: NewElevatorStates(equipment),
		Complexes: NewComplexStates(complexes, entrances),
	}
	s.Elevators.Update(outages)

	return s
}

// ComplexFull is everything known about one complex.
type ComplexFull struct {
	Meta      *ComplexMeta       `json:"meta"`
	Upcoming  []transit.Upcoming `json:"upcoming"`
	Elevators []Elevator         `json:"elevators"`
}

// Full returns the complex's metadata, arrivals and equipment. It fails only if
// no part of the state knows the complex.
func (s *States) Full(complex refdata.ComplexID) (ComplexFull, bool) {
	full := ComplexFull{
		Upcoming:  []transit.Upcoming{},
		Elevators: []Elevator{},
	}

	meta, metaOK := s.Complexes.Get(complex)
	if metaOK {
		full.Meta = &meta
	}

	upcoming, upcomingOK := s.Trains.Get(complex)
	if upcomingOK {
		full.Upcoming = upcoming
	}

	elevators, elevatorsOK := s.Elevators.Get(complex)
	if elevatorsOK {
		full.Elevators = elevators
	}

	return full, metaOK || upcomingOK || elevatorsOK
}

// Ingest feeds one snapshot into the train index.
func (s *States) Ingest(snapshot poller.Snapshot) {
	if snapshot.Batch == nil {
		return
	}

	s.Trains.Ingest(snapshot.Batch)
	s.Metrics.SetUpcoming(s.Trains.Len())

	log.Debug().Str("feed", snapshot.Feed.Name).Stringer("snapshot", snapshot).Msg("Ingested snapshot")
}

// Run ingests snapshots until the channel closes or ctx is cancelled.
func (s *States) Run(ctx context.Context, snapshots <-chan poller.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			s.Ingest(snapshot)
		}
	}
}

type OutageSource interface {
	Outages(ctx context.Context) ([]refdata.AccessOutage, error)
}

// RefreshOutages reloads the outage report every period until ctx is cancelled.
// A failed load keeps the previous outages in place.
func (s *States) RefreshOutages(ctx context.Context, source OutageSource, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		outages, err := source.Outages(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to refresh elevator outages")
			s.Metrics.RefdataError("outages")
			continue
		}

		s.Elevators.Update(outages)
		summary := s.Elevators.Summary()
		s.Metrics.SetOutageComplexes(len(summary))

		log.Info().Int("outages", len(outages)).Int("complexes", len(summary)).Msg("Refreshed elevator outages")
	}
}
