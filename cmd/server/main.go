package main

import (
	"os"

	"github.com/engagemate-api/internal/config"
	"github.com/engagemate-api/internal/database"
	"github.com/engagemate-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootCmd serves the API when no subcommand is given
var rootCmd = &cobra.Command{
	Use:          "engagemate-api",
	Short:        "Comment automation API",
	Long:         "Replies to post comments in the creator's voice and delivers requested assets by direct message.",
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by every command
func setup() (*config.Config, zerolog.Logger, error) {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return nil, log, err
	}
	return cfg, log, nil
}

// openDatabase connects to PostgreSQL using cfg
func openDatabase(cfg *config.Config, log zerolog.Logger) (*database.DB, error) {
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	return db, nil
}
