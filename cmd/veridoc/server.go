package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soundprediction/veridoc/pkg/config"
	"github.com/soundprediction/veridoc/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Veridoc HTTP server",
	Long: `Start the Veridoc HTTP server to provide REST API access to the
validation pipeline.

The server provides endpoints for:
- Validated retrieval (plain and compliance-restricted)
- Corpus and policy reload
- Health checks, stats and Prometheus metrics

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().String("host", "localhost", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
	serverCmd.Flags().String("mode", "debug", "Server mode (debug, release, test)")

	// Embedding flags
	serverCmd.Flags().String("embedding-provider", "none", "Embedding provider (openai, embedeverything, none)")
	serverCmd.Flags().String("embedding-model", "text-embedding-3-small", "Embedding model")

	// Vector index flags
	serverCmd.Flags().String("index-backend", "memory", "Vector index backend (memory, badger)")
	serverCmd.Flags().String("index-path", "./veridoc_index", "Vector index path (badger backend)")

	// Audit flags
	serverCmd.Flags().Bool("audit", false, "Write a Parquet decision trail")
	serverCmd.Flags().String("audit-path", "", "Directory for audit Parquet files")

	viper.BindPFlag("server.host", serverCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serverCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.mode", serverCmd.Flags().Lookup("mode"))
	viper.BindPFlag("embedding.provider", serverCmd.Flags().Lookup("embedding-provider"))
	viper.BindPFlag("embedding.model", serverCmd.Flags().Lookup("embedding-model"))
	viper.BindPFlag("vector_index.backend", serverCmd.Flags().Lookup("index-backend"))
	viper.BindPFlag("vector_index.path", serverCmd.Flags().Lookup("index-path"))
	viper.BindPFlag("audit.enabled", serverCmd.Flags().Lookup("audit"))
	viper.BindPFlag("audit.parquet_path", serverCmd.Flags().Lookup("audit-path"))
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)

	ctx := context.Background()
	client, err := initializeClient(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	srv := server.New(cfg, client)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return client.Close(shutdownCtx)
}
