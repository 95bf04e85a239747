package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/groundswell/listcutter/internal/core/api"
	"github.com/groundswell/listcutter/internal/core/config"
	"github.com/groundswell/listcutter/internal/core/db"
	"github.com/groundswell/listcutter/internal/core/logging"
	"github.com/groundswell/listcutter/internal/core/server"
	"github.com/groundswell/listcutter/internal/core/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const Version = "0.1.0"

const shutdownTimeout = 10 * time.Second

var ingestAPICmd = &cobra.Command{
	Use:   "ingest-api",
	Short: "Start the external activity event ingestion API",
	RunE:  runIngestAPI,
}

func init() {
	rootCmd.AddCommand(ingestAPICmd)
	ingestAPICmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	ingestAPICmd.Flags().Int("port", 8080, "HTTP server port")
}

func runIngestAPI(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("--db-url or LC_INGEST_API_DATABASE_URL required")
	}

	log, err := logging.New(logLevel, logFormat)
	if err != nil {
		return err
	}
	defer log.Sync()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	var migrationID string
	checkQuery := `SELECT migration_id FROM migrations WHERE migration_id = '001_initial_schema.sql'`
	if err := database.Get(&migrationID, database.Rebind(checkQuery)); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("migration 001_initial_schema not applied - run 'listcutter migrate' first")
		}
		return fmt.Errorf("failed to check migrations: %w", err)
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	st := store.New(database, queries, log)
	svc := api.NewService(st, log)

	httpServer, err := server.NewHTTPServer(cfg, svc, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info("starting listcutter ingest API",
		zap.String("version", Version),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port))

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		log.Info("shutting down gracefully")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}
