package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/phdi/tcr/internal/client"
	"github.com/phdi/tcr/internal/config"
	"github.com/phdi/tcr/internal/domain/reference"
	"github.com/phdi/tcr/internal/domain/stamping"
	"github.com/phdi/tcr/internal/platform/db"
	"github.com/phdi/tcr/internal/platform/fhir"
	"github.com/phdi/tcr/internal/platform/httpx"
	"github.com/phdi/tcr/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tcr-server",
		Short: "Trigger code reference service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(stampCmd())
	rootCmd.AddCommand(clientCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the trigger code reference API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run reference store migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _ := cmd.Flags().GetString("store")
			ctx := cmd.Context()

			migrator, closeDB, err := openMigrator(ctx, store)
			if err != nil {
				return err
			}
			defer closeDB()

			fmt.Printf("Running migrations on store: %s\n", store)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("store", db.StoreERSD, "Reference store to migrate (ersd or rckms)")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _ := cmd.Flags().GetString("store")
			ctx := cmd.Context()

			migrator, closeDB, err := openMigrator(ctx, store)
			if err != nil {
				return err
			}
			defer closeDB()

			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for store: %s\n", store)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("store", db.StoreERSD, "Reference store to inspect (ersd or rckms)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data",
	}

	conditionsCmd := &cobra.Command{
		Use:   "conditions",
		Short: "Load RCKMS condition names from a .csv or .xlsx export",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			conditions, err := reference.LoadConditionFile(file)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, closeStore, err := openConditionWriter(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := reference.SeedConditions(ctx, store, conditions)
			if err != nil {
				return fmt.Errorf("seed failed after %d condition(s): %w", n, err)
			}
			fmt.Printf("Seeded %d condition(s) from %s.\n", n, file)
			return nil
		},
	}
	conditionsCmd.Flags().String("file", "", "Path to the RCKMS condition code export")
	cmd.AddCommand(conditionsCmd)

	return cmd
}

func stampCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stamp",
		Short: "Stamp a local eCR bundle and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read bundle: %w", err)
			}
			bundle, err := fhir.ParseBundle(data)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			ctx := cmd.Context()

			stores, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			refSvc := reference.NewService(stores.Concepts, stores.Names, logger)
			stampSvc := stamping.NewService(refSvc, refSvc, logger)
			out, conditions, err := stampSvc.StampConditions(ctx, bundle)
			if err != nil {
				return err
			}
			logger.Info().Strs("conditions", conditions).Msg("stamped bundle")
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().String("file", "", "Path to a FHIR bundle JSON file")
	return cmd
}

func clientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Call a running tcr-server",
	}
	cmd.PersistentFlags().String("url", "http://localhost:8080", "Base URL of the server")
	cmd.PersistentFlags().Duration("timeout", 30*time.Second, "Request timeout")

	stamp := &cobra.Command{
		Use:   "stamp",
		Short: "POST a bundle to /stamp-condition-extensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read bundle: %w", err)
			}
			bundle, err := fhir.ParseBundle(data)
			if err != nil {
				return err
			}
			out, err := newClient(cmd).StampBundle(cmd.Context(), bundle)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	stamp.Flags().String("file", "", "Path to a FHIR bundle JSON file")
	cmd.AddCommand(stamp)

	valueSets := &cobra.Command{
		Use:   "value-sets",
		Short: "GET /get-value-sets for one condition",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, _ := cmd.Flags().GetString("code")
			filter, _ := cmd.Flags().GetString("filter")
			if code == "" {
				return fmt.Errorf("--code is required")
			}
			set, err := newClient(cmd).ValueSets(cmd.Context(), code, filter)
			if err != nil {
				return err
			}
			return printJSON(cmd, set)
		},
	}
	valueSets.Flags().String("code", "", "SNOMED condition code")
	valueSets.Flags().String("filter", "", "Comma separated value set types to keep")
	cmd.AddCommand(valueSets)

	return cmd
}

func newClient(cmd *cobra.Command) *client.Client {
	url, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return client.New(url, timeout, zerolog.New(os.Stderr).With().Timestamp().Logger())
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.Level())
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	// Reference stores
	ctx := context.Background()
	stores, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open reference stores: %w", err)
	}
	defer stores.Close()
	logger.Info().Str("driver", cfg.ReferenceDriver).Msg("connected to reference stores")

	e := newServer(cfg, logger, stores)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires services, handlers and middleware onto a fresh echo
// instance.
func newServer(cfg *config.Config, logger zerolog.Logger, stores *referenceStores) *echo.Echo {
	e := httpx.NewEcho()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	refSvc := reference.NewService(stores.Concepts, stores.Names, logger)
	stampSvc := stamping.NewService(refSvc, refSvc, logger)

	reference.NewHandler(refSvc).RegisterRoutes(e)
	stamping.NewHandler(stampSvc).RegisterRoutes(e)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	e.GET("/health/db", db.HealthHandler(refSvc))

	return e
}
