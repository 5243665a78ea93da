package consumer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultStatsAddress = ":3333"

type RedisConsumer struct {
	QueueName string

	NumberConsumers int
	BatchSize       int

	Timeout time.Duration

	Consumer rmq.BatchConsumer

	Connection rmq.Connection
	Client     redis.Cmdable

	// StatsAddress is where the queue stats and health endpoints listen. Empty disables them.
	StatsAddress string
}

// Setup opens the queue and attaches the batch consumers.
func (c *RedisConsumer) Setup() (rmq.Queue, error) {
	log.Info().Str("queue", c.QueueName).Int("consumers", c.NumberConsumers).Msg("Starting consumers")

	queue, err := c.Connection.OpenQueue(c.QueueName)
	if err != nil {
		return nil, fmt.Errorf("open queue %s: %w", c.QueueName, err)
	}
	if err := queue.StartConsuming(int64(c.NumberConsumers*c.BatchSize), 1*time.Second); err != nil {
		return nil, fmt.Errorf("start consuming %s: %w", c.QueueName, err)
	}

	for i := 0; i < c.NumberConsumers; i++ {
		tag := fmt.Sprintf("%s-consumer-%d", c.QueueName, i)
		if _, err := queue.AddBatchConsumer(tag, int64(c.BatchSize), c.Timeout, c.Consumer); err != nil {
			return nil, fmt.Errorf("add consumer %s: %w", tag, err)
		}
		log.Debug().Str("tag", tag).Msg("Started consumer")
	}

	return queue, nil
}

// Run consumes until ctx is cancelled, then waits for in flight batches to finish.
func (c *RedisConsumer) Run(ctx context.Context) error {
	if _, err := c.Setup(); err != nil {
		return err
	}

	go StartCleaner(ctx, c.Connection, 5*time.Minute)

	if c.StatsAddress != "" {
		go c.startStatsServer(ctx)
	}

	<-ctx.Done()
	log.Info().Str("queue", c.QueueName).Msg("Stopping consumers")
	<-c.Connection.StopAllConsuming()

	return nil
}

func (c *RedisConsumer) startStatsServer(ctx context.Context) {
	endpoint := fmt.Sprintf("/%s/stats", c.QueueName)

	mux := http.NewServeMux()
	mux.Handle(endpoint, NewStatsHandler(c.Connection))
	mux.Handle("/health", NewHealthHandler(c.Client))

	server := &http.Server{Addr: c.StatsAddress, Handler: mux}
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	log.Info().Msgf("Stats server listening on http://localhost%s%s", c.StatsAddress, endpoint)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Stats server failed")
	}
}
