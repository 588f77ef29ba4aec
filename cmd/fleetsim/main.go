package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/vasker/fleetsim/internal/config"
	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/export"
	"codeberg.org/vasker/fleetsim/internal/logger"
	"codeberg.org/vasker/fleetsim/internal/machine"
	"codeberg.org/vasker/fleetsim/internal/pid"
	"codeberg.org/vasker/fleetsim/internal/publish"
	"codeberg.org/vasker/fleetsim/internal/scheduler"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	applyLogLevel()
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.FatalWithCode(asDomain(err)).Msg("")
	}
	defer pid.Remove()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil {
		logger.ErrorWithCode(asDomain(err)).Msg("")
		pid.Remove()
		os.Exit(1)
	}
	logger.Info().Msg("Exiting...")
}

func run(ctx context.Context) error {
	errFactory := errors.New()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	fleet, err := machine.NewFleet(machine.FleetConfig{
		Counts:    cfg.Counts(),
		Filter:    cfg.Filter(),
		Seed:      seed,
		Overrides: cfg.Overrides(),
	})
	if err != nil {
		return errFactory.Wrap(errors.ErrBuildFleet, err)
	}

	logger.Info().
		Int("machines", fleet.Size()).
		Str("protocol", cfg.Protocol).
		Int64("seed", seed).
		Msg("Fleet built")

	pub, err := newPublisher(ctx, fleet)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitPublisher, err)
	}
	defer pub.Close()

	recorder, err := export.NewService(export.Config{
		JSONPath:  cfg.ExportJSON,
		DBPath:    cfg.ArchiveDB,
		BatchSize: cfg.BatchSize,
	})
	if err != nil {
		return errFactory.Wrap(errors.ErrInitExporter, err)
	}
	defer recorder.Close()

	sched, err := scheduler.New(scheduler.Config{
		Interval:      time.Duration(cfg.Interval * float64(time.Second)),
		ComputeLimit:  cfg.ComputeLimit,
		DispatchLimit: cfg.DispatchLimit,
		QueueDepth:    cfg.QueueDepth,
		RetryLimit:    cfg.RetryLimit,
		RetryBackoff:  cfg.RetryBackoff,
		GracePeriod:   cfg.GracePeriod,
	}, fleet, pub, recorder)
	if err != nil {
		return err
	}

	runCtx := ctx
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Duration)*time.Second)
		defer cancel()
	}

	return sched.Run(runCtx)
}

func newPublisher(ctx context.Context, fleet *machine.Fleet) (publish.Publisher, error) {
	store := publish.NewTokenStore(nil)
	if cfg.TokensFile != "" {
		var err error
		store, err = publish.LoadTokens(cfg.TokensFile)
		if err != nil {
			return nil, err
		}
	}
	if cfg.AccessToken != "" {
		store.SetFallback(publish.Credential(cfg.AccessToken))
	}

	return publish.New(ctx, publish.Config{
		Protocol: publish.Protocol(cfg.Protocol),
		Host:     cfg.Host,
		Port:     cfg.PlatformPort(),
		TLS:      cfg.TLS,
		QoS:      byte(cfg.QoS),
		Influx: publish.InfluxConfig{
			URL:    cfg.InfluxURL,
			Token:  cfg.InfluxToken,
			Org:    cfg.InfluxOrg,
			Bucket: cfg.InfluxBucket,
		},
	}, store, fleet.DeviceIDs())
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func applyLogLevel() {
	if cfg.Debug || cfg.Verbose {
		return
	}
	switch config.LogLevel(cfg.LogLevel) {
	case config.LogLevelDebug:
		logger.SetLogLevel(logger.DebugLevel)
	case config.LogLevelInfo:
		logger.SetLogLevel(logger.InfoLevel)
	case config.LogLevelWarning:
		logger.SetLogLevel(logger.WarnLevel)
	case config.LogLevelError:
		logger.SetLogLevel(logger.ErrorLevel)
	}
}

func asDomain(err error) errors.Error {
	var domainErr errors.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	return errors.New().Wrap(errors.ErrInternal, err)
}
