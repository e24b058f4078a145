// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve starts the HTTP API used by the web front end: quality checks,
query refinement, recommendations, title suggestions, chat, and the
context document endpoints. Prometheus metrics are exposed on /metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("starting research assistant",
		zap.String("version", version),
		zap.String("llm_provider", string(a.cfg.LLM.Provider)),
		zap.String("store_backend", string(a.cfg.Store.Backend)),
		zap.String("store_path", a.cfg.Store.Path),
	)
	return a.server().Run(ctx, a.cfg.Server.Address)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.address)")
	_ = viper.BindPFlag("server.address", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
