package api

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/subpar/subpar/pkg/feeds"
	"github.com/subpar/subpar/pkg/metrics"
	"github.com/subpar/subpar/pkg/poller"
	"github.com/subpar/subpar/pkg/recorder"
	"github.com/subpar/subpar/pkg/redis_client"
	"github.com/subpar/subpar/pkg/refdata"
	"github.com/subpar/subpar/pkg/state"
	"github.com/subpar/subpar/pkg/util"
	"github.com/urfave/cli/v2"
)

const defaultOutagePeriod = time.Hour

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Poll the feeds and serve the aggregated state over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Value: ":8080",
				Usage: "listen target for the web server",
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "cache reference data directories in redis",
			},
			&cli.DurationFlag{
				Name:  "cache-expiration",
				Value: 12 * time.Hour,
				Usage: "how long cached reference data is kept",
			},
			&cli.BoolFlag{
				Name:  "record",
				Usage: "publish a record of each snapshot to the recorder queue",
			},
		},
		Action: func(c *cli.Context) error {
			settings := util.GetSettings()

			outagePeriod, err := settings.Duration("OUTAGE_PERIOD", defaultOutagePeriod)
			if err != nil {
				return err
			}
			timeout, err := settings.Duration("FETCH_TIMEOUT", feeds.DefaultTimeout)
			if err != nil {
				return err
			}

			if c.Bool("cache") || c.Bool("record") {
				if err := redis_client.Connect(); err != nil {
					log.Fatal().Err(err).Msg("Failed to connect to redis")
				}
			}

			ctx, cancel := util.SignalContext(c.Context)
			defer cancel()

			collector := metrics.NewCollector()

			refdataClient := refdata.NewClient(feeds.NewClient(settings.String("API_KEY", ""), timeout))
			if c.Bool("cache") {
				refdataClient.WithCache(redis_client.Client, c.Duration("cache-expiration"))
			}

			states, err := state.Load(ctx, refdataClient)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to load reference data")
			}
			states.Metrics = collector

			if path := settings.String("STOPS_FILE", ""); path != "" {
				stops, err := refdata.LoadManifestFile(path)
				if err != nil {
					return err
				}
				states.Complexes.AttachManifest(stops)
				log.Info().Int("stops", len(stops)).Str("path", path).Msg("Attached stops manifest")
			}

			listener, err := poller.NewListenerFromSettings(settings, nil, collector)
			if err != nil {
				return err
			}

			snapshots := listener.Start(ctx)
			if c.Bool("record") {
				publisher, err := recorder.NewPublisher(redis_client.QueueConnection)
				if err != nil {
					return err
				}
				snapshots = publisher.Tee(snapshots)
			}

			go states.Run(ctx, snapshots)
			go states.RefreshOutages(ctx, refdataClient, outagePeriod)

			webApp := NewApp(states, listener.Feeds, collector)
			go func() {
				<-ctx.Done()
				if err := webApp.ShutdownWithTimeout(5 * time.Second); err != nil {
					log.Error().Err(err).Msg("Failed to shut down web server")
				}
			}()

			log.Info().Str("listen", c.String("listen")).Msg("Serving")
			return webApp.Listen(c.String("listen"))
		},
	}
}
