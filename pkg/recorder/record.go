package recorder

import (
	"time"

	"github.com/google/uuid"
	"github.com/subpar/subpar/pkg/poller"
)

const QueueName = "subpar-snapshots"

// Record is the queued summary of one fetched response.
type Record struct {
	Feed      string    `json:"feed"`
	Hash      uuid.UUID `json:"hash"`
	Requested time.Time `json:"requested"`
	Responded time.Time `json:"responded"`
	Timestamp time.Time `json:"timestamp"`
	Length    int       `json:"length"`

	Positions int `json:"positions"`
	Schedules int `json:"schedules"`
	Alerts    int `json:"alerts"`
	Errors    int `json:"errors"`
}

func NewRecord(snapshot poller.Snapshot) Record {
	record := Record{
		Feed:      snapshot.Feed.Name,
		Hash:      snapshot.Hash,
		Requested: snapshot.Requested,
		Responded: snapshot.Responded,
		Length:    snapshot.Length,
	}

	if snapshot.Batch != nil {
		counts := snapshot.Batch.Counts()
		record.Timestamp = snapshot.Batch.Timestamp
		record.Positions = counts.Positions
		record.Schedules = counts.Schedules
		record.Alerts = counts.Alerts
		record.Errors = counts.Errors
	}

	return record
}
