package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"parking-garage/internal/config"
	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
	"parking-garage/internal/server"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "Mode to run: cli, server, or both")
	flag.StringVar(&cfg.Port, "port", cfg.Port, "Port for HTTP server")
	flag.IntVar(&cfg.Floors, "floors", cfg.Floors, "Initialize this many floors at startup (0 waits for an init command)")
	flag.Parse()

	logging.Configure(logging.Config{
		Level:   cfg.LogLevel,
		Service: cfg.OTelServiceName,
		Output:  logOutput(cfg.Mode),
	})
	logger := logging.WithComponent("main")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("exited with error")
	}
}

// run owns every deferred cleanup, so main only exits after telemetry has
// been flushed.
func run(cfg *config.Config, logger zerolog.Logger) error {
	switch cfg.Mode {
	case "cli", "server", "both":
	default:
		return fmt.Errorf("invalid mode %q, must be cli, server, or both", cfg.Mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
		ServiceName:  cfg.OTelServiceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		Environment:  cfg.Environment,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer shutdownTelemetry(logger, telemetry)

	lot, err := parking.NewInstrumentedParkingLot(
		parking.NewParkingLot(parking.WithHourlyRate(cfg.HourlyRate)),
		telemetry,
	)
	if err != nil {
		return fmt.Errorf("create parking lot: %w", err)
	}

	if cfg.Floors > 0 {
		if err := lot.InitializeFloors(ctx, cfg.Floors); err != nil {
			return fmt.Errorf("initialize %d floors: %w", cfg.Floors, err)
		}
	}

	switch cfg.Mode {
	case "server":
		return runServer(ctx, cfg, lot, logger)
	case "both":
		return runBoth(ctx, cfg, lot, telemetry, logger)
	default:
		runCLI(ctx, lot, telemetry)
		return nil
	}
}

// logOutput keeps structured logs off stdout while the interactive shell
// owns it.
func logOutput(mode string) *os.File {
	if mode == "server" {
		return os.Stdout
	}
	return os.Stderr
}

// runCLI returns when stdin is exhausted or ctx is cancelled, whichever
// comes first; a pending read on stdin is abandoned.
func runCLI(ctx context.Context, lot *parking.InstrumentedParkingLot, telemetry *parking.TelemetryProvider) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		parking.NewShell(lot, telemetry, os.Stdin, os.Stdout).Run(ctx)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func runServer(ctx context.Context, cfg *config.Config, lot *parking.InstrumentedParkingLot, logger zerolog.Logger) error {
	srv := newServer(cfg, lot)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("received shutdown signal")
		return shutdownServer(srv)
	})

	return g.Wait()
}

func runBoth(ctx context.Context, cfg *config.Config, lot *parking.InstrumentedParkingLot, telemetry *parking.TelemetryProvider, logger zerolog.Logger) error {
	srv := newServer(cfg, lot)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		runCLI(ctx, lot, telemetry)
		logger.Info().Msg("CLI exited")
		cancel()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return shutdownServer(srv)
	})

	return g.Wait()
}

func newServer(cfg *config.Config, lot *parking.InstrumentedParkingLot) *server.Server {
	return server.NewServer(server.Config{
		Port:               cfg.Port,
		ServiceName:        cfg.OTelServiceName,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, lot)
}

func shutdownServer(srv *server.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func shutdownTelemetry(logger zerolog.Logger, telemetry *parking.TelemetryProvider) {
	logger.Info().Msg("shutting down telemetry")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error shutting down telemetry")
	}
}
