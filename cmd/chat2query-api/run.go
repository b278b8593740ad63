package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	apiserver "github.com/dataservice/chat2query/internal/api_server"
	"github.com/dataservice/chat2query/internal/store"
	"github.com/dataservice/chat2query/pkg/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the chat2query api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, undo, err := setup()
		defer undo()
		if err != nil {
			return fmt.Errorf("initializing data store: %w", err)
		}

		zap.S().Info("Starting API service")
		defer zap.S().Info("API service stopped")

		store := store.NewStore(db)
		defer store.Close()

		metricsHandler := metrics.NewPrometheusMetricsHandler(metrics.NewTodoStatsCollector(store))

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			server := apiserver.New(cfg, store, listener, metricsHandler.Registerer())
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("Error running server", "error", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener, metricsHandler)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalw("Error running metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
