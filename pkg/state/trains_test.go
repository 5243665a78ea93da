package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subpar/subpar/pkg/refdata"
	"github.com/subpar/subpar/pkg/transit"
)

var serviceDay = transit.NewDate(2024, time.March, 4)

func at(hour, minute int) time.Time {
	return time.Date(2024, time.March, 4, hour, minute, 0, 0, time.UTC)
}

func trip(t *testing.T, text string) transit.TripId {
	id, err := transit.ParseTripId(text, serviceDay)
	require.NoError(t, err)
	return id
}

func scheduleBatch(message time.Time, schedules ...transit.Schedule) *transit.Batch {
	batch := &transit.Batch{Timestamp: message}
	for _, schedule := range schedules {
		batch.Updates = append(batch.Updates, transit.EntityResult{Update: transit.NewScheduleUpdate(schedule)})
	}
	return batch
}

func plan(stop string, arrival time.Time) transit.StopPlan {
	return transit.StopPlan{Stop: transit.StopId(stop), Times: transit.LastStop(arrival)}
}

func newTestTrains(now time.Time) *TrainStates {
	trains := NewTrainStates(map[transit.StopId]refdata.ComplexID{
		"L06": 119,
		"L03": 602,
		"L08": 121,
	})
	trains.now = func() time.Time { return now }
	return trains
}

func TestTrainsIngestScenario(t *testing.T) {
	now := at(7, 55)
	trains := newTestTrains(now)
	t1 := trip(t, "078000_L..N")

	trains.Ingest(scheduleBatch(now, transit.Schedule{
		Trip:  t1,
		Stops: []transit.StopPlan{{Stop: "L06N", Times: transit.MidStop(at(8, 0), at(8, 0))}},
	}))

	upcoming, ok := trains.Get(119)
	require.True(t, ok)
	require.Len(t, upcoming, 1)
	assert.Equal(t, transit.StopId("L06"), upcoming[0].Stop)
	assert.Equal(t, at(8, 0), upcoming[0].Arrival)
	assert.Equal(t, now, upcoming[0].Message)
	assert.True(t, t1.Equal(upcoming[0].Trip))

	complex, ok := trains.ComplexOf("L06N")
	require.True(t, ok)
	assert.Equal(t, refdata.ComplexID(119), complex)
}

func TestTrainsSeedsEveryComplex(t *testing.T) {
	now := at(7, 55)
	trains := newTestTrains(now)

	_, ok := trains.Get(602)
	assert.False(t, ok)

	trains.Ingest(scheduleBatch(now))

	upcoming, ok := trains.Get(602)
	assert.True(t, ok)
	assert.Empty(t, upcoming)

	_, ok = trains.Get(999)
	assert.False(t, ok)
}

func TestTrainsUnknownStopSkipped(t *testing.T) {
	now := at(7, 55)
	trains := newTestTrains(now)

	trains.Ingest(scheduleBatch(now, transit.Schedule{
		Trip:  trip(t, "078000_L..N"),
		Stops: []transit.StopPlan{plan("X99N", at(8, 0)), plan("L08N", at(8, 3))},
	}))

	upcoming, _ := trains.Get(121)
	require.Len(t, upcoming, 1)
	assert.Equal(t, 1, trains.Len())
}

func TestTrainsLastStopWinsWithinComplex(t *testing.T) {
	now := at(7, 55)
	trains := NewTrainStates(map[transit.StopId]refdata.ComplexID{"A27": 611, "R16": 611})
	trains.now = func() time.Time { return now }

	trains.Ingest(scheduleBatch(now, transit.Schedule{
		Trip:  trip(t, "078000_A..N"),
		Stops: []transit.StopPlan{plan("A27N", at(8, 0)), plan("R16N", at(8, 5))},
	}))

	upcoming, _ := trains.Get(611)
	require.Len(t, upcoming, 1)
	assert.Equal(t, transit.StopId("R16"), upcoming[0].Stop)
	assert.Equal(t, at(8, 5), upcoming[0].Arrival)
}

func TestTrainsMergeIsIdempotent(t *testing.T) {
	now := at(7, 55)
	trains := newTestTrains(now)
	batch := scheduleBatch(now, transit.Schedule{
		Trip:  trip(t, "078000_L..N"),
		Stops: []transit.StopPlan{plan("L06N", at(8, 0)), plan("L03N", at(8, 6))},
	})

	trains.Ingest(batch)
	first, _ := trains.Get(119)

	trains.Ingest(batch)
	second, _ := trains.Get(119)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, trains.Len())
}

func TestTrainsMergeOrdering(t *testing.T) {
	now := at(7, 55)
	trains := newTestTrains(now)
	t1 := trip(t, "078000_L..N")

	trains.Ingest(scheduleBatch(now.Add(-10*time.Second), transit.Schedule{Trip: t1, Stops: []transit.StopPlan{plan("L06N", at(8, 0))}}))

	// newer message moves the arrival
	trains.Ingest(scheduleBatch(now, transit.Schedule{Trip: t1, Stops: []transit.StopPlan{plan("L06N", at(8, 2))}}))
	upcoming, _ := trains.Get(119)
	require.Len(t, upcoming, 1)
	assert.Equal(t, at(8, 2), upcoming[0].Arrival)
	assert.Equal(t, now, upcoming[0].Message)

	// older message is discarded
	trains.Ingest(scheduleBatch(now.Add(-20*time.Second), transit.Schedule{Trip: t1, Stops: []transit.StopPlan{plan("L06N", at(8, 9))}}))
	upcoming, _ = trains.Get(119)
	require.Len(t, upcoming, 1)
	assert.Equal(t, at(8, 2), upcoming[0].Arrival)
}

func TestTrainsStopMismatchKeepsOld(t *testing.T) {
	now := at(7, 55)
	trains := NewTrainStates(map[transit.StopId]refdata.ComplexID{"A27": 611, "R16": 611})
	trains.now = func() time.Time { return now }
	t1 := trip(t, "078000_A..N")

	trains.Ingest(scheduleBatch(now, transit.Schedule{Trip: t1, Stops: []transit.StopPlan{plan("A27N", at(8, 0))}}))
	trains.Ingest(scheduleBatch(now, transit.Schedule{Trip: t1, Stops: []transit.StopPlan{plan("R16N", at(8, 5))}}))

	upcoming, _ := trains.Get(611)
	require.Len(t, upcoming, 1)
	assert.Equal(t, transit.StopId("A27"), upcoming[0].Stop)
	assert.Equal(t, at(8, 0), upcoming[0].Arrival)
}

func TestTrainsEvictsStaleEntries(t *testing.T) {
	now := at(7, 55)
	trains := newTestTrains(now)

	trains.Ingest(scheduleBatch(now.Add(-30*time.Second), transit.Schedule{
		Trip:  trip(t, "078000_L..N"),
		Stops: []transit.StopPlan{plan("L06N", at(8, 0))},
	}))

	trains.now = func() time.Time { return now.Add(20 * time.Second) }
	trains.Ingest(scheduleBatch(now.Add(20*time.Second), transit.Schedule{
		Trip:  trip(t, "079000_L..N"),
		Stops: []transit.StopPlan{plan("L06N", at(8, 10))},
	}))

	upcoming, _ := trains.Get(119)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "079000_L..N", upcoming[0].TripID)
}

func TestTrainsGetSortsByArrival(t *testing.T) {
	now := at(7, 55)
	trains := newTestTrains(now)

	trains.Ingest(scheduleBatch(now,
		transit.Schedule{Trip: trip(t, "079000_L..N"), Stops: []transit.StopPlan{plan("L06N", at(8, 10))}},
		transit.Schedule{Trip: trip(t, "078000_L..N"), Stops: []transit.StopPlan{plan("L06N", at(8, 0))}},
		transit.Schedule{Trip: trip(t, "078500_L..S"), Stops: []transit.StopPlan{{Stop: "L06S", Times: transit.FirstStop(at(8, 4))}}},
	))

	upcoming, _ := trains.Get(119)
	require.Len(t, upcoming, 3)
	assert.Equal(t, []time.Time{at(8, 0), at(8, 4), at(8, 10)},
		[]time.Time{upcoming[0].Arrival, upcoming[1].Arrival, upcoming[2].Arrival})
}

func TestStopIndex(t *testing.T) {
	index := StopIndex([]refdata.ComplexInfo{
		{ComplexID: 611, StopIDs: refdata.SemicolonList{"R16", "A27"}},
		{ComplexID: 119, StopIDs: refdata.SemicolonList{"L06"}},
	})

	assert.Equal(t, map[transit.StopId]refdata.ComplexID{"R16": 611, "A27": 611, "L06": 119}, index)
}
