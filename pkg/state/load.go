package state

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/subpar/subpar/pkg/refdata"
)

// Source provides the reference data States is built from.
type Source interface {
	OutageSource
	Equipment(ctx context.Context) ([]refdata.AccessEquipment, error)
	Complexes(ctx context.Context) ([]refdata.ComplexInfo, error)
	Entrances(ctx context.Context) ([]refdata.SubwayEntrance, error)
}

// Load fetches every reference data set in parallel and builds the States. Any
// failure fails the whole load.
func Load(ctx context.Context, source Source) (*States, error) {
	var (
		complexes []refdata.ComplexInfo
		equipment []refdata.AccessEquipment
		outages   []refdata.AccessOutage
		entrances []refdata.SubwayEntrance
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) (err error) {
		complexes, err = source.Complexes(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		equipment, err = source.Equipment(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		outages, err = source.Outages(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		entrances, err = source.Entrances(ctx)
		return err
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}

	log.Info().
		Int("complexes", len(complexes)).
		Int("equipment", len(equipment)).
		Int("outages", len(outages)).
		Int("entrances", len(entrances)).
		Msg("Loaded reference data")

	return NewStates(complexes, equipment, outages, entrances), nil
}
