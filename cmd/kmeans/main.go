package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/objones25/kmeans/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	app := newApp(cfg)
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("kmeans failed")
	}
}
