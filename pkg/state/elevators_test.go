package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subpar/subpar/pkg/refdata"
)

func testEquipment() []refdata.AccessEquipment {
	return []refdata.AccessEquipment{
		{
			Station:          "Union Sq - 14 St",
			EquipmentID:      "EL001",
			EquipmentType:    refdata.Elevator,
			ComplexID:        100,
			ADA:              true,
			Active:           true,
			ShortDescription: "Street to mezzanine",
			LinesServed:      refdata.TrainList{"L"},
			NextADANorth:     "117, L",
			NextADASouth:     "",
		},
		{
			Station:       "Union Sq - 14 St",
			EquipmentID:   "ES002",
			EquipmentType: refdata.Escalator,
			ComplexID:     100,
		},
		{
			Station:       "Bedford Av",
			EquipmentID:   "EL120",
			EquipmentType: refdata.Elevator,
			ComplexID:     120,
		},
	}
}

func testOutage(id refdata.EquipmentID) refdata.AccessOutage {
	return refdata.AccessOutage{
		EquipmentID:     id,
		OutageDate:      refdata.OutageTime{Time: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)},
		EstimatedReturn: refdata.OutageTime{Time: time.Date(2024, time.March, 4, 17, 0, 0, 0, time.UTC)},
		Reason:          "Repair",
		ADA:             true,
	}
}

func TestElevatorsOutageScenario(t *testing.T) {
	elevators := NewElevatorStates(testEquipment())
	elevators.Update([]refdata.AccessOutage{testOutage("EL001")})

	got, ok := elevators.Get(100)
	require.True(t, ok)
	require.Len(t, got, 2)

	assert.Equal(t, refdata.EquipmentID("EL001"), got[0].ID)
	require.NotNil(t, got[0].Outage)
	assert.Equal(t, "Repair", got[0].Outage.Reason)
	assert.Nil(t, got[1].Outage)
	assert.True(t, got[1].IsEscalator)

	assert.Equal(t, []Nearby{{ComplexID: 117, Route: "L"}}, got[0].Nearby)
	assert.Equal(t, []refdata.ComplexID{100}, elevators.Summary())
}

func TestElevatorsUnknownComplex(t *testing.T) {
	elevators := NewElevatorStates(testEquipment())

	_, ok := elevators.Get(999)
	assert.False(t, ok)
}

func TestElevatorsUnknownEquipmentSkipped(t *testing.T) {
	elevators := NewElevatorStates(testEquipment())
	elevators.Update([]refdata.AccessOutage{testOutage("EL404"), testOutage("EL120")})

	assert.Equal(t, []refdata.ComplexID{120}, elevators.Summary())
}

func TestElevatorsSummaryMemoized(t *testing.T) {
	elevators := NewElevatorStates(testEquipment())
	elevators.Update([]refdata.AccessOutage{testOutage("EL120"), testOutage("EL001")})

	assert.Equal(t, []refdata.ComplexID{100, 120}, elevators.Summary())
	assert.Equal(t, []refdata.ComplexID{100, 120}, elevators.Summary())
	assert.Equal(t, 1, elevators.summaryComputations)

	elevators.Update([]refdata.AccessOutage{testOutage("EL120")})

	assert.Equal(t, []refdata.ComplexID{120}, elevators.Summary())
	assert.Equal(t, 2, elevators.summaryComputations)
}

func TestElevatorsUpdateClearsOutages(t *testing.T) {
	elevators := NewElevatorStates(testEquipment())
	elevators.Update([]refdata.AccessOutage{testOutage("EL001")})
	elevators.Update(nil)

	got, _ := elevators.Get(100)
	assert.Nil(t, got[0].Outage)
	assert.Empty(t, elevators.Summary())
}

func TestElevatorsGetReturnsCopy(t *testing.T) {
	elevators := NewElevatorStates(testEquipment())

	got, _ := elevators.Get(100)
	got[0].Description = "changed"

	again, _ := elevators.Get(100)
	assert.Equal(t, "Street to mezzanine", again[0].Description)
}

func TestParseNearby(t *testing.T) {
	nearby, ok := parseNearby("117, L")
	assert.True(t, ok)
	assert.Equal(t, Nearby{ComplexID: 117, Route: "L"}, nearby)

	_, ok = parseNearby("")
	assert.False(t, ok)

	_, ok = parseNearby("abc, L")
	assert.False(t, ok)
}
