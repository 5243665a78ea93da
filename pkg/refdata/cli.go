package refdata

import (
	"context"
	"errors"

	"github.com/kr/pretty"
	"github.com/subpar/subpar/pkg/feeds"
	"github.com/subpar/subpar/pkg/util"
	"github.com/urfave/cli/v2"
)

func newClientFromSettings() (*Client, error) {
	settings := util.GetSettings()

	timeout, err := settings.Duration("FETCH_TIMEOUT", feeds.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	return NewClient(feeds.NewClient(settings.String("API_KEY", ""), timeout)), nil
}

func dumpCommand[T any](name string, usage string, load func(*Client, context.Context) ([]T, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(c *cli.Context) error {
			client, err := newClientFromSettings()
			if err != nil {
				return err
			}

			records, err := load(client, c.Context)
			if err != nil {
				return err
			}

			pretty.Println(records)
			return nil
		},
	}
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "refdata",
		Usage: "Fetch and print reference data sets",
		Subcommands: []*cli.Command{
			dumpCommand("equipment", "print the elevator and escalator directory", (*Client).Equipment),
			dumpCommand("outages", "print current and upcoming outages", (*Client).Outages),
			dumpCommand("complexes", "print the station complex directory", (*Client).Complexes),
			dumpCommand("entrances", "print the subway entrances", (*Client).Entrances),
			{
				Name:  "stops",
				Usage: "print the stations in a GTFS stops.txt",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "stops.txt path, defaults to SUBPAR_STOPS_FILE",
					},
				},
				Action: func(c *cli.Context) error {
					path := c.String("file")
					if path == "" {
						path = util.GetSettings().String("STOPS_FILE", "")
					}
					if path == "" {
						return errors.New("no stops file given")
					}

					stops, err := LoadManifestFile(path)
					if err != nil {
						return err
					}

					for _, stop := range stops {
						if stop.IsStation() {
							pretty.Println(stop)
						}
					}
					return nil
				},
			},
		},
	}
}
