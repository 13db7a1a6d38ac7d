package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/dotside-studios/rccard-agent/config"
	"github.com/dotside-studios/rccard-agent/nfc"
	"github.com/dotside-studios/rccard-agent/server"
)

// Agent wires a hardware scanner to the server.
type Agent struct {
	Logger  zerolog.Logger
	Manager nfc.Manager
	Config  config.Config

	Scanner *nfc.Scanner
	Server  *server.Server

	cancel context.CancelFunc
	done   chan struct{}
}

func NewAgent(manager nfc.Manager, cfg config.Config, logger zerolog.Logger) *Agent {
	return &Agent{
		Logger:  logger.With().Str("component", "agent").Logger(),
		Manager: manager,
		Config:  cfg,
	}
}

// newExtractor returns the extractor selected by the configuration.
func newExtractor(cfg config.Config) *nfc.Extractor {
	if cfg.StrictCardID {
		return nfc.NewExtractor(nfc.WithStrictCardID())
	}
	return nfc.NewExtractor()
}

func (a *Agent) Start() error {
	if a.Server != nil {
		return errors.New("agent is already running")
	}

	handler := nfc.NewHandler(newExtractor(a.Config), a.Logger)

	scanner, err := nfc.NewScanner(nfc.ScannerConfig{
		Manager:    a.Manager,
		DevicePath: a.Config.Device,
		Handler:    handler,
		Interval:   a.Config.PollInterval,
		TagTypes:   a.Config.TagTypes,
		Logger:     a.Logger,
	})
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Port:      a.Config.Port,
		Host:      a.Config.Host,
		APISecret: a.Config.APISecret,
		MDNS:      a.Config.MDNS,
		CertFile:  a.Config.CertFile,
		KeyFile:   a.Config.KeyFile,
		Handler:   handler,
		Logger:    a.Logger,
	})
	if err := srv.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.Scanner = scanner
	a.Server = srv
	a.cancel = cancel
	a.done = make(chan struct{})

	scanner.Start()
	go func() {
		defer close(a.done)
		srv.Consume(ctx, scanner.Results())
	}()

	a.Logger.Info().Str("device", a.Config.Device).Msg("agent started")
	return nil
}

func (a *Agent) Stop(ctx context.Context) error {
	if a.Server == nil {
		a.Logger.Info().Msg("agent is not running")
		return nil
	}

	a.Logger.Info().Msg("stopping agent...")

	// Stopping the scanner closes its results channel, which ends Consume.
	a.Scanner.Stop()
	<-a.done
	a.cancel()

	err := a.Server.Stop(ctx)
	a.Scanner = nil
	a.Server = nil

	a.Logger.Info().Msg("agent stopped")
	return err
}
