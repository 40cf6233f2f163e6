// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/go-core-stack/coordinator-proxy/pkg/config"
	"github.com/go-core-stack/coordinator-proxy/pkg/metrics"
	"github.com/go-core-stack/coordinator-proxy/pkg/proxy"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var configPath, listenAddr, logLevel string
	flags := pflag.NewFlagSet("coordinator-proxy", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", os.Getenv("COORDINATOR_CONFIG_FILE"), "optional YAML config file")
	flags.StringVar(&listenAddr, "listen", "", "listen address (overrides COORDINATOR_LISTEN_ADDR)")
	flags.StringVar(&logLevel, "log-level", "", "log level (overrides COORDINATOR_LOG_LEVEL)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if logLevel != "" {
		cfg.LogLevel = strings.ToLower(logLevel)
	}

	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("invalid log level")
	}
	log.Logger = log.Level(level)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	proxyHandler, err := proxy.New(cfg, proxy.WithMetrics(metrics.New(registry)))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct proxy")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var handler http.Handler = proxyHandler
	if cfg.MetricsAddr != "" {
		metrics.Serve(ctx, cfg.MetricsAddr, metrics.Handler(registry), log.With().Str("component", "metrics").Logger())
	} else {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		mux.Handle("/", proxyHandler)
		handler = mux
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	go func() {
		log.Info().
			Str("listen_addr", cfg.ListenAddr).
			Str("protocol", string(cfg.Protocol)).
			Dur("request_timeout", cfg.RequestTimeout).
			Msg("starting coordinator proxy")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("proxy server exited unexpectedly")
		}
	}()

	waitForShutdown(ctx, server, cfg.GracefulShutdownTimeout)
}

// parseLogLevel accepts levels in any case, matching the env and YAML sources.
func parseLogLevel(raw string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
}

func waitForShutdown(ctx context.Context, srv *http.Server, timeout time.Duration) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	log.Info().Msg("shutting down coordinator proxy")

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed; forcing close")
		if closeErr := srv.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("forced close failed")
		}
	}

	log.Info().Msg("proxy stopped")
}
