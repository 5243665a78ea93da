package state

import (
	"github.com/rs/zerolog/log"
	"github.com/subpar/subpar/pkg/refdata"
	"github.com/subpar/subpar/pkg/transit"
)

type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type StopMeta struct {
	ID   transit.StopId `json:"id"`
	Name string         `json:"name,omitempty"`
}

// ComplexMeta is the static description of a complex.
type ComplexMeta struct {
	ID        refdata.ComplexID        `json:"id"`
	Name      string                   `json:"name"`
	ADA       refdata.AdaStatus        `json:"ada"`
	ADANotes  *string                  `json:"ada_notes"`
	Coord     Coordinate               `json:"coord"`
	Routes    []string                 `json:"routes"`
	Stops     []StopMeta               `json:"stops"`
	Entrances []refdata.SubwayEntrance `json:"entrances"`
}

// ComplexStates is read only once built.
type ComplexStates struct {
	meta map[refdata.ComplexID]*ComplexMeta
}

func NewComplexStates(complexes []refdata.ComplexInfo, entrances []refdata.SubwayEntrance) *ComplexStates {
	c := &ComplexStates{meta: make(map[refdata.ComplexID]*ComplexMeta, len(complexes))}

	for _, info := range complexes {
		meta := &ComplexMeta{
			ID:        info.ComplexID,
			Name:      info.StopName,
			ADA:       info.ADA,
			ADANotes:  info.ADANotes,
			Coord:     Coordinate{Latitude: float64(info.Latitude), Longitude: float64(info.Longitude)},
			Routes:    []string(info.Routes),
			Stops:     make([]StopMeta, 0, len(info.StopIDs)),
			Entrances: []refdata.SubwayEntrance{},
		}
		for _, stop := range info.StopIDs {
			meta.Stops = append(meta.Stops, StopMeta{ID: transit.StopId(stop)})
		}
		c.meta[info.ComplexID] = meta
	}

	for _, entrance := range entrances {
		meta, ok := c.meta[entrance.ComplexID]
		if !ok {
			log.Debug().Int("complex", int(entrance.ComplexID)).Str("stop_name", entrance.StopName).Msg("Subway entrance with unknown complex id")
			continue
		}
		meta.Entrances = append(meta.Entrances, entrance)
	}

	return c
}

// AttachManifest names each complex stop from a GTFS stops.txt.
func (c *ComplexStates) AttachManifest(stops []*refdata.ManifestStop) {
	names := make(map[transit.StopId]string, len(stops))
	for _, stop := range stops {
		names[transit.StopId(stop.StopID)] = stop.StopName
	}

	for _, meta := range c.meta {
		for i := range meta.Stops {
			if name, ok := names[meta.Stops[i].ID]; ok {
				meta.Stops[i].Name = name
			}
		}
	}
}

func (c *ComplexStates) Get(complex refdata.ComplexID) (ComplexMeta, bool) {
	meta, ok := c.meta[complex]
	if !ok {
		return ComplexMeta{}, false
	}
	return *meta, true
}

func (c *ComplexStates) Len() int {
	return len(c.meta)
}
