package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/subpar/subpar/pkg/api"
	"github.com/subpar/subpar/pkg/realtime"
	"github.com/subpar/subpar/pkg/recorder"
	"github.com/subpar/subpar/pkg/refdata"
	"github.com/subpar/subpar/pkg/util"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	util.LoadDotEnv()

	if os.Getenv("SUBPAR_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("SUBPAR_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "subpar",
		Description: "Realtime NYC subway arrivals and elevator status",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			realtime.RegisterCLI(),
			recorder.RegisterCLI(),
			refdata.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
