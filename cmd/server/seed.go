package main

import (
	"github.com/engagemate-api/internal/repository"
	"github.com/engagemate-api/internal/seed"
	"github.com/engagemate-api/internal/service"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load persona, assets, rules and posts from a YAML file",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}

	cmd.Flags().String("file", "seeds/demo.yaml", "Seed file")

	rootCmd.AddCommand(cmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")

	cfg, log, err := setup()
	if err != nil {
		return err
	}

	f, err := seed.Load(path)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return err
	}

	repos := repository.New(db)
	settings := service.NewSettingsService(repos.Settings, log)

	return seed.Apply(cmd.Context(), f, settings, repos, log)
}
