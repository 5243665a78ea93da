package recorder

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/subpar/subpar/pkg/consumer"
	"github.com/subpar/subpar/pkg/dedup"
	"github.com/subpar/subpar/pkg/metrics"
	"github.com/subpar/subpar/pkg/redis_client"
	"github.com/subpar/subpar/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "recorder",
		Usage: "Consume recorded snapshot summaries",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the snapshot record consumer",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "consumers",
						Value: 2,
						Usage: "number of queue consumers",
					},
					&cli.StringFlag{
						Name:  "stats-listen",
						Value: ":3333",
						Usage: "address for the queue stats server, empty to disable",
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						log.Fatal().Err(err).Msg("Failed to connect to redis")
					}

					ctx, cancel := util.SignalContext(c.Context)
					defer cancel()

					redisConsumer := &consumer.RedisConsumer{
						QueueName:       QueueName,
						NumberConsumers: c.Int("consumers"),
						BatchSize:       20,
						Timeout:         2 * time.Second,
						Consumer:        NewBatchConsumer(dedup.NewTracker(redis_client.Client), metrics.NewCollector()),
						Connection:      redis_client.QueueConnection,
						Client:          redis_client.Client,
						StatsAddress:    c.String("stats-listen"),
					}

					return redisConsumer.Run(ctx)
				},
			},
		},
	}
}
