package realtime

import (
	"github.com/rs/zerolog/log"
	"github.com/subpar/subpar/pkg/poller"
	"github.com/subpar/subpar/pkg/recorder"
	"github.com/subpar/subpar/pkg/redis_client"
	"github.com/subpar/subpar/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "Poll the realtime feeds and log what comes back",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "feed",
				Usage: "only poll the named feed, may be repeated",
			},
			&cli.BoolFlag{
				Name:  "record",
				Usage: "publish a record of each snapshot to the recorder queue",
			},
		},
		Action: func(c *cli.Context) error {
			listener, err := poller.NewListenerFromSettings(util.GetSettings(), c.StringSlice("feed"), nil)
			if err != nil {
				return err
			}

			var publisher *recorder.Publisher
			if c.Bool("record") {
				if err := redis_client.Connect(); err != nil {
					log.Fatal().Err(err).Msg("Failed to connect to redis")
				}
				if publisher, err = recorder.NewPublisher(redis_client.QueueConnection); err != nil {
					return err
				}
			}

			ctx, cancel := util.SignalContext(c.Context)
			defer cancel()

			for snapshot := range listener.Start(ctx) {
				log.Info().
					Str("hash", snapshot.Hash.String()).
					Int("length", snapshot.Length).
					Dur("latency", snapshot.Responded.Sub(snapshot.Requested)).
					Msgf("Received %s", snapshot)

				if publisher != nil {
					if err := publisher.Publish(snapshot); err != nil {
						log.Error().Err(err).Str("feed", snapshot.Feed.Name).Msg("Failed to publish snapshot record")
					}
				}
			}

			return nil
		},
	}
}
