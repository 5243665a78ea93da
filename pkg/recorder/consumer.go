package recorder

import (
	"context"
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/subpar/subpar/pkg/dedup"
	"github.com/subpar/subpar/pkg/metrics"
)

// BatchConsumer logs queued records and flags responses that were already seen.
type BatchConsumer struct {
	Tracker *dedup.Tracker
	Metrics *metrics.Collector
}

func NewBatchConsumer(tracker *dedup.Tracker, collector *metrics.Collector) *BatchConsumer {
	return &BatchConsumer{Tracker: tracker, Metrics: collector}
}

func (c *BatchConsumer) Consume(batch rmq.Deliveries) {
	for _, delivery := range batch {
		c.consume(delivery)
	}
}

func (c *BatchConsumer) consume(delivery rmq.Delivery) {
	var record Record
	if err := json.Unmarshal([]byte(delivery.Payload()), &record); err != nil {
		log.Error().Err(err).Msg("Failed to decode snapshot record")
		if err := delivery.Reject(); err != nil {
			log.Error().Err(err).Msg("Failed to reject delivery")
		}
		return
	}

	count, err := c.Tracker.Observe(context.Background(), record.Hash)
	if err != nil {
		log.Error().Err(err).Str("feed", record.Feed).Msg("Failed to track response hash")
	}

	event := log.Info()
	message := "Recorded response"
	if count > 1 {
		event = log.Warn().Int64("seen", count)
		message = "duplicate response"
		c.Metrics.Duplicate()
	}

	event.
		Str("feed", record.Feed).
		Str("hash", record.Hash.String()).
		Time("timestamp", record.Timestamp).
		Int("length", record.Length).
		Int("schedules", record.Schedules).
		Int("positions", record.Positions).
		Int("errors", record.Errors).
		Msg(message)

	if err := delivery.Ack(); err != nil {
		log.Error().Err(err).Msg("Failed to ack delivery")
	}
}
