package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/engagemate-api/internal/api"
	"github.com/engagemate-api/internal/generation"
	"github.com/engagemate-api/internal/repository"
	"github.com/engagemate-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run migrations, start the comment processor and serve the HTTP API",
		RunE:  runServe,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	log.Info().Msg("Starting EngageMate API server...")

	// Initialize database
	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Error().Err(err).Msg("Failed to run database migrations")
		return err
	}

	gen, err := generation.New(&cfg.Generation, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create text generator")
		return err
	}

	// Initialize repositories and services
	repos := repository.New(db)
	services := service.NewServices(repos, gen, cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := services.Settings.Init(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to load settings")
		return err
	}

	// Start background comment processor
	go services.Processor.StartProcessor(context.Background())
	log.Info().Msg("Background comment processor started")

	if os.Getenv("ENV") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(services, cfg, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("Server failed")
			services.Processor.StopProcessor()
			return err
		}
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	// In-flight comments finish before the database closes
	services.Processor.StopProcessor()

	log.Info().Msg("Server exited gracefully")
	return nil
}
