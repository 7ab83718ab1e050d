package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/seqrec/config"
	"github.com/rushteam/seqrec/logging"
	"github.com/rushteam/seqrec/server"
)

func main() {
	configPath := flag.String("config", "configs/seqrec.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Init(cfg.Logging)
	logger := logging.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := config.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build pipeline")
		os.Exit(1)
	}
	defer func() {
		if err := components.Close(); err != nil {
			logger.Warn().Err(err).Msg("close components")
		}
	}()

	srv := server.New(components.Pipeline, server.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
	}, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
	}()

	logger.Info().
		Str("addr", httpServer.Addr).
		Str("scorer", components.Scorer.Name()).
		Int("batch_size", cfg.Pipeline.BatchSize).
		Int("top_n", cfg.Pipeline.TopN).
		Bool("pipelined", cfg.Pipeline.Pipelined).
		Msg("seqrec listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
	logger.Info().Msg("seqrec stopped")
}
