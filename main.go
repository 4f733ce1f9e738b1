package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"insight_server/config"
	"insight_server/internal/bootstrap"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

func main() {
	// Load .env file if exists (for local development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	log := newLogger(cfg)

	app, cleanup, err := bootstrap.NewAPI(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize api")
	}
	defer cleanup()

	// Graceful shutdown with timeout
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Dur("timeout", shutdownTimeout).Msg("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- app.Shutdown()
		}()

		select {
		case err := <-done:
			if err != nil {
				log.Error().Err(err).Msg("error shutting down")
			} else {
				log.Info().Msg("server shut down gracefully")
			}
		case <-ctx.Done():
			log.Warn().Msg("shutdown timed out, forcing exit")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("starting server")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.IsDevelopment() {
		level = zerolog.DebugLevel
	}

	var log zerolog.Logger
	if cfg.IsDevelopment() {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(level).With().Timestamp().Str("service", "insight_server").Logger()
}
