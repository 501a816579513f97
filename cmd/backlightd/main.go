package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	grpcAdapter "github.com/quentinrf/backlightd/internal/adapters/grpc"
	"github.com/quentinrf/backlightd/internal/adapters/login1"
	"github.com/quentinrf/backlightd/internal/adapters/memory"
	"github.com/quentinrf/backlightd/internal/adapters/mock"
	"github.com/quentinrf/backlightd/internal/adapters/sqlite"
	"github.com/quentinrf/backlightd/internal/adapters/sysfs"
	"github.com/quentinrf/backlightd/internal/domain"
	"github.com/quentinrf/backlightd/internal/ports"
	"github.com/quentinrf/backlightd/pkg/tlsconfig"
)

// Values used when the backlight or sensor is simulated
const (
	mockMaxBrightness = 1000
	mockLux           = 150
	mockLuxVariation  = 60
)

// retentionInterval is how often old ramp history is pruned
const retentionInterval = 24 * time.Hour

// backlightDevice reports the range and current level of the panel
type backlightDevice interface {
	ports.BrightnessReader
	MaxBrightness(ctx context.Context) (int, error)
}

func main() {
	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Read configuration from file and environment
	config, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(config.LogLevel)

	log.Info().Msg("starting backlightd")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go handleSignals(quit, cancel, os.Exit)

	// Initialize backlight
	device, writer, err := openBacklight(config)
	if err != nil {
		log.Fatal().Err(err).Str("writer", config.WriterType).Msg("failed to open backlight")
	}
	defer writer.Close()

	maxBrightness, err := device.MaxBrightness(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("device", config.BacklightDevice).Msg("failed to read max brightness")
	}
	rng, err := domain.NewBacklightRange(maxBrightness)
	if err != nil {
		log.Fatal().Err(err).Str("device", config.BacklightDevice).Msg("unusable backlight")
	}
	log.Info().
		Str("device", config.BacklightDevice).
		Str("writer", config.WriterType).
		Int("max", rng.Max).
		Int("min", rng.Min).
		Int("step", rng.Step).
		Msg("initialized backlight")

	// Initialize repository
	var repo domain.RampRepository
	switch config.RepoType {
	case "sqlite":
		r, err := sqlite.NewRampRepository(config.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("db_path", config.DBPath).Msg("failed to open SQLite database")
		}
		defer r.Close()
		repo = r
		log.Info().Str("db_path", config.DBPath).Msg("initialized SQLite repository")
	default:
		repo = memory.NewRampRepository()
		log.Info().Msg("initialized in-memory repository")
	}

	// Initialize sensor
	var sensor ports.AmbientSensor
	switch config.SensorType {
	case "mock":
		sensor = mock.NewFakeSensor(mockLux, mockLuxVariation)
		log.Info().Msg("initialized mock sensor")
	default:
		s := sysfs.NewSensor(config.SensorRoot, config.SensorDevice)
		sensor = s
		log.Info().Str("path", s.Path()).Msg("initialized sysfs sensor")
	}
	defer sensor.Close()

	g, gctx := errgroup.WithContext(ctx)

	// The baseline read is required; without it there is nothing to compare against.
	monitor := ports.NewAmbientMonitor(sensor, config.PollInterval, config.ChangeThreshold)
	events, err := monitor.Start(gctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start ambient monitor")
	}

	actuator := ports.NewBrightnessActuator(rng, device, writer, repo, config.StepInterval)
	g.Go(func() error {
		return actuator.Run(gctx, events)
	})

	retention := ports.NewRetention(repo, retentionInterval, config.HistoryRetention)
	g.Go(func() error {
		return retention.Run(gctx)
	})

	if config.StatusPort != "" {
		grpcServer, listener, err := newStatusServer(config, grpcAdapter.NewStatusHandler(rng, repo, sensor, device))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start status service")
		}
		log.Info().Str("port", config.StatusPort).Msg("status service listening")

		g.Go(func() error {
			if err := grpcServer.Serve(listener); err != nil {
				return fmt.Errorf("serve status: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			grpcServer.GracefulStop()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("stopped with error")
		os.Exit(1)
	}

	log.Info().Msg("backlightd stopped")
}

// handleSignals cancels on the first termination signal and calls exit(1) on
// the second, for when a graceful shutdown is stuck
func handleSignals(quit <-chan os.Signal, cancel context.CancelFunc, exit func(int)) {
	sig, ok := <-quit
	if !ok {
		return
	}
	log.Info().Str("signal", sig.String()).Msg("shutting down...")
	cancel()

	sig, ok = <-quit
	if !ok {
		return
	}
	log.Warn().Str("signal", sig.String()).Msg("second signal, exiting now")
	exit(1)
}

// openBacklight returns the device used to read brightness and the writer
// used to change it
func openBacklight(config Config) (backlightDevice, ports.BrightnessWriter, error) {
	switch config.WriterType {
	case "mock":
		fake := mock.NewFakeBacklight(mockMaxBrightness, mockMaxBrightness/2)
		return fake, fake, nil

	case "sysfs":
		b := sysfs.NewBacklight(config.BacklightRoot, config.BacklightDevice)
		return b, b, nil

	default:
		b := sysfs.NewBacklight(config.BacklightRoot, config.BacklightDevice)
		w, err := login1.NewWriter(config.DBus, b.Name())
		if err != nil {
			return nil, nil, err
		}
		return b, w, nil
	}
}

// newStatusServer creates the gRPC status server and its listener
func newStatusServer(config Config, handler grpcAdapter.StatusServer) (*grpc.Server, net.Listener, error) {
	// Configure TLS if certificates are provided
	var serverOpts []grpc.ServerOption
	if config.TLSCert != "" {
		tlsCfg, err := tlsconfig.LoadServerTLS(config.TLSCert, config.TLSKey, config.TLSCA)
		if err != nil {
			return nil, nil, fmt.Errorf("load TLS config: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsCfg)))
		log.Info().Msg("mTLS enabled")
	} else {
		log.Warn().Msg("TLS_CERT not set, status service runs without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)
	grpcAdapter.RegisterStatusServer(grpcServer, handler)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", config.StatusPort))
	if err != nil {
		return nil, nil, fmt.Errorf("listen: %w", err)
	}

	return grpcServer, listener, nil
}
