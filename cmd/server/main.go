package main

import (
	"os"

	"bus-route-viewer/internal/config"
	"bus-route-viewer/internal/platform/logging"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// main is the application entry point. Commands build their own adapters
// from the resolved configuration.
func main() {
	config.LoadDotEnv()

	// Commands reload with their flag overrides; this pass only configures logging.
	cfg, err := config.Load(config.Overrides{})
	logging.Setup(os.Stderr, cfg.LogFormat, cfg.Debug)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	app := &cli.App{
		Name:        "busroute",
		Usage:       "view optimized school bus routes",
		Description: "Looks up bus routes on the route optimizer and shows them as a map and an itinerary",

		Commands: []*cli.Command{
			serveCommand(),
			lookupCommand(),
			pingCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}
