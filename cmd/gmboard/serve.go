package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/gmboard/internal/cli"
	httpAdapter "github.com/aretw0/gmboard/pkg/adapters/http"
	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/observability"
	"github.com/aretw0/gmboard/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts gmboard as a JSON API over HTTP. Each POST /sessions starts a run,
either over the scenario directory or over uploaded documents.
Set GMBOARD_REDIS_ADDR to share the in-flight latch between replicas.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := cfg.Logger()

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		gen, err := cli.NewGenerator(sigCtx, cfg, logger)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return fmt.Errorf("error registering metrics: %w", err)
		}

		mgr := session.NewManager(gen,
			session.WithSessionOptions(cli.SessionOptions(cfg, logger, cli.NewLatch(cfg), metrics.Hooks())...),
			session.WithManagerLogger(logger),
		)

		handlerOpts := []httpAdapter.Option{
			httpAdapter.WithGatherer(reg),
			httpAdapter.WithLogger(logger),
		}
		if docs, err := docstore.LoadDir(sigCtx, cfg.Dir); err == nil && docs.Len() > 0 {
			handlerOpts = append(handlerOpts, httpAdapter.WithDefaultDocuments(docs))
		} else {
			logger.Warn("No default scenario; sessions need uploaded documents", "dir", cfg.Dir, "err", err)
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           httpAdapter.NewHandler(mgr, handlerOpts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting gmboard server", "address", srv.Addr, "dir", cfg.Dir, "provider", cfg.Provider)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			logger.Info("Start shutdown", "signal", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("gmboard server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
