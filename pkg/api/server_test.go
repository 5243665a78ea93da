package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subpar/subpar/pkg/feeds"
	"github.com/subpar/subpar/pkg/metrics"
	"github.com/subpar/subpar/pkg/refdata"
	"github.com/subpar/subpar/pkg/state"
	"github.com/subpar/subpar/pkg/transit"
)

func testStates(t *testing.T) *state.States {
	complexes := []refdata.ComplexInfo{
		{ComplexID: 119, StopName: "Bedford Av", StopIDs: refdata.SemicolonList{"L08"}, Routes: refdata.SpaceList{"L"}},
	}
	equipment := []refdata.AccessEquipment{
		{EquipmentID: "EL120", EquipmentType: refdata.Elevator, ComplexID: 119, ShortDescription: "Street to platform", Serving: "Manhattan bound"},
		{EquipmentID: "EL200", EquipmentType: refdata.Elevator, ComplexID: 200},
	}
	outages := []refdata.AccessOutage{
		{EquipmentID: "EL120", Reason: "Repair", OutageDate: refdata.OutageTime{Time: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)}},
	}
	states := state.NewStates(complexes, equipment, outages, nil)

	now := time.Now()
	id, err := transit.ParseTripId("078000_L..N", transit.DateOf(now))
	require.NoError(t, err)

	states.Trains.Ingest(&transit.Batch{
		Timestamp: now,
		Updates: []transit.EntityResult{{Update: transit.NewScheduleUpdate(transit.Schedule{
			Trip:  id,
			Stops: []transit.StopPlan{{Stop: "L08N", Times: transit.LastStop(now.Add(3 * time.Minute))}},
		})}},
	})

	return states
}

func get(t *testing.T, path string) (int, string) {
	app := NewApp(testStates(t), feeds.DefaultRegistry().All(), metrics.NewCollector())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestVersion(t *testing.T) {
	status, body := get(t, "/version")

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"version":"v0.1"}`, body)
}

func TestUpcoming(t *testing.T) {
	status, body := get(t, "/upcoming/119")
	require.Equal(t, http.StatusOK, status)

	var upcoming []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &upcoming))
	require.Len(t, upcoming, 1)
	assert.Equal(t, "078000_L..N", upcoming[0]["trip"])
	assert.Equal(t, "L08", upcoming[0]["stop"])
	assert.Equal(t, "L", upcoming[0]["route"])
}

func TestUpcomingNotFound(t *testing.T) {
	status, body := get(t, "/upcoming/999")

	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"complex '999' not found"}`, body)
}

func TestInvalidComplexID(t *testing.T) {
	status, body := get(t, "/complex/abc")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"invalid complex id 'abc'"}`, body)
}

func TestElevatorsDetailed(t *testing.T) {
	status, body := get(t, "/elevators/119")
	require.Equal(t, http.StatusOK, status)

	var elevators []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &elevators))
	require.Len(t, elevators, 1)
	assert.Equal(t, "EL120", elevators[0]["id"])
	assert.Equal(t, "Manhattan bound", elevators[0]["serving"])

	outage, ok := elevators[0]["outage"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Repair", outage["reason"])
	assert.Contains(t, outage, "asof")
}

func TestElevatorsOverview(t *testing.T) {
	status, body := get(t, "/elevators_overview")

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[119]`, body)
}

func TestComplexFull(t *testing.T) {
	status, body := get(t, "/complex/119")
	require.Equal(t, http.StatusOK, status)

	var full struct {
		Meta      map[string]interface{}   `json:"meta"`
		Upcoming  []map[string]interface{} `json:"upcoming"`
		Elevators []map[string]interface{} `json:"elevators"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &full))

	assert.Equal(t, "Bedford Av", full.Meta["name"])
	assert.Len(t, full.Upcoming, 1)
	require.Len(t, full.Elevators, 1)
	assert.NotContains(t, full.Elevators[0], "serving")
	assert.Contains(t, full.Elevators[0], "desc")
}

func TestComplexWithEquipmentOnly(t *testing.T) {
	status, body := get(t, "/complex/200")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"meta":null`)

	status, _ = get(t, "/complex/999")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFeeds(t *testing.T) {
	status, body := get(t, "/feeds")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"name":"ace"`)
}

func TestMetrics(t *testing.T) {
	status, body := get(t, "/metrics")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "subpar_upcoming_entries")
}
