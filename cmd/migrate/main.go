package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/logging"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository/migrations"
)

const usage = "usage: migrate [up|down|version]"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if _, err := logging.Setup(cfg.Logging, cfg.IsProduction()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	target, err := migrations.TargetFor(cfg.Store)
	if errors.Is(err, migrations.ErrNoMigrations) {
		log.Info().Str("driver", cfg.Store.Driver).Msg("Nothing to migrate")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve migration target")
	}

	log.Info().Str("driver", cfg.Store.Driver).Str("command", cmd).Msg("Running migrations")

	switch cmd {
	case "up":
		err = migrations.Up(target)
	case "down":
		err = migrations.Down(target)
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = migrations.Version(target)
		if err == nil {
			fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
