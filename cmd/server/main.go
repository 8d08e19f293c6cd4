package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/siamt-api/internal/api"
	"github.com/siamt-api/internal/config"
	"github.com/siamt-api/internal/database"
	"github.com/siamt-api/internal/repository"
	"github.com/siamt-api/internal/service"
	"github.com/siamt-api/internal/storage"
	"github.com/siamt-api/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "siamt-api",
		Short:         "News and conventions upload API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSweepCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, db *database.DB, _ zerolog.Logger) error {
				return db.RunMigrations(cfg.Database.MigrationsPath)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, db *database.DB, _ zerolog.Logger) error {
				return db.MigrateDown(cfg.Database.MigrationsPath)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "goto <version>",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return withDatabase(func(cfg *config.Config, db *database.DB, _ zerolog.Logger) error {
				return db.MigrateToVersion(cfg.Database.MigrationsPath, uint(version))
			})
		},
	})
	return cmd
}

func newSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove stored files no record references, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return withDatabase(func(cfg *config.Config, db *database.DB, log zerolog.Logger) error {
				layout, err := newLayout(cfg)
				if err != nil {
					return err
				}
				services := service.NewServices(repository.New(db), variantStores(layout), cfg, log)

				result, err := services.Sweeper.SweepOnce(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			})
		},
	}
}

// withDatabase loads configuration, connects to the database and runs fn
func withDatabase(fn func(cfg *config.Config, db *database.DB, log zerolog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	return fn(cfg, db, log)
}

func newLayout(cfg *config.Config) (*storage.Layout, error) {
	dir, err := storage.ResolveDir(cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewLayout(dir)
}

func variantStores(layout *storage.Layout) service.Stores {
	return service.Stores{News: layout.News, Convention: layout.Convention}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("env", cfg.Env).Msg("Starting SIAMT API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return err
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Error().Err(err).Msg("Failed to run database migrations")
		return err
	}

	// Resolve upload storage
	layout, err := newLayout(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve upload directory")
		return err
	}
	if err := layout.EnsureDirs(); err != nil {
		log.Error().Err(err).Msg("Failed to create upload directory")
		return err
	}
	log.Info().
		Str("news_dir", layout.News.Root()).
		Str("conventions_dir", layout.Convention.Root()).
		Msg("Upload storage ready")

	// Initialize repositories
	repos := repository.New(db)

	// Initialize services
	services := service.NewServices(repos, variantStores(layout), cfg, log)

	// Start background orphan sweeper
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go services.Sweeper.Start(ctx)

	// Initialize router
	router := api.NewRouter(services, cfg, layout.News.Root(), db, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("public_base_url", cfg.Server.PublicBaseURL).
			Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
		services.Sweeper.Stop()
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop orphan sweeper
	services.Sweeper.Stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}
