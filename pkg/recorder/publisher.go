package recorder

import (
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/subpar/subpar/pkg/poller"
)

type Publisher struct {
	queue rmq.Queue
}

func NewPublisher(connection rmq.Connection) (*Publisher, error) {
	queue, err := connection.OpenQueue(QueueName)
	if err != nil {
		return nil, err
	}
	return &Publisher{queue: queue}, nil
}

func (p *Publisher) Publish(snapshot poller.Snapshot) error {
	payload, err := json.Marshal(NewRecord(snapshot))
	if err != nil {
		return err
	}
	return p.queue.PublishBytes(payload)
}

// Tee publishes every snapshot and passes it on unchanged. The returned channel
// closes once in is closed.
func (p *Publisher) Tee(in <-chan poller.Snapshot) <-chan poller.Snapshot {
	out := make(chan poller.Snapshot, cap(in))

	go func() {
		defer close(out)

		for snapshot := range in {
			if err := p.Publish(snapshot); err != nil {
				log.Error().Err(err).Str("feed", snapshot.Feed.Name).Msg("Failed to publish snapshot record")
			}
			out <- snapshot
		}
	}()

	return out
}
