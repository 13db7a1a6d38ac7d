// Package main runs the RC card agent: it polls an NFC reader, extracts RC
// card ids from NDEF text records and forwards each scan to WebSocket clients.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dotside-studios/rccard-agent/buildinfo"
	"github.com/dotside-studios/rccard-agent/config"
	"github.com/dotside-studios/rccard-agent/logging"
	"github.com/dotside-studios/rccard-agent/nfc"
	"github.com/dotside-studios/rccard-agent/protocol"
	"github.com/dotside-studios/rccard-agent/server"
	agenttls "github.com/dotside-studios/rccard-agent/tls"
)

// nfcManager is replaced in tests.
var nfcManager nfc.Manager = nfc.NewManager()

type globalFlags struct {
	configPath string
	debug      bool
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	serve := serveCmd(&g)
	cmd := &cobra.Command{
		Use:          buildinfo.Name,
		Short:        buildinfo.Description,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         serve.RunE,
	}
	cmd.Flags().AddFlagSet(serve.Flags())

	cmd.PersistentFlags().StringVar(&g.configPath, "config", config.DefaultPath(), "path to the YAML config file")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: console or json")

	cmd.AddCommand(serve, decodeCmd(), devicesCmd(&g), versionCmd())
	return cmd
}

// loadConfig reads the config file and applies the global flags.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (config.Config, error) {
	explicit := cmd.Flags().Changed("config")
	cfg, err := config.Load(g.configPath, !explicit)
	if err != nil {
		return cfg, err
	}
	if g.debug {
		cfg.Debug = true
	}
	if g.logFormat != "" {
		cfg.LogFormat = g.logFormat
	}
	return cfg, cfg.Validate()
}

func (g *globalFlags) logger(cfg config.Config) zerolog.Logger {
	return logging.Setup(logging.Config{Format: cfg.LogFormat, Debug: cfg.Debug})
}

func serveCmd(g *globalFlags) *cobra.Command {
	var (
		port      int
		host      string
		device    string
		apiSecret string
		noMDNS    bool
		strict    bool
		certFile  string
		keyFile   string
		tlsAuto   bool
		tagTypes  []string
	)

	c := &cobra.Command{
		Use:   "serve",
		Short: "Poll the NFC reader and serve scans over WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("host") {
				cfg.Host = host
			}
			if flags.Changed("device") {
				cfg.Device = device
			}
			if flags.Changed("api-secret") {
				cfg.APISecret = apiSecret
			}
			if noMDNS {
				cfg.MDNS = false
			}
			if strict {
				cfg.StrictCardID = true
			}
			if flags.Changed("cert") {
				cfg.CertFile = certFile
			}
			if flags.Changed("key") {
				cfg.KeyFile = keyFile
			}
			if tlsAuto {
				cfg.TLSAuto = true
			}
			if flags.Changed("tag-type") {
				cfg.TagTypes = tagTypes
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := g.logger(cfg)
			logger.Info().Str("version", buildinfo.FullVersion()).Msg("starting " + buildinfo.DisplayName)

			if cfg.TLSAuto && cfg.CertFile == "" {
				certFile, keyFile, err := agenttls.NewManager(config.Dir(), logger).EnsureCertificates()
				if err != nil {
					return fmt.Errorf("failed to prepare TLS certificates: %w", err)
				}
				cfg.CertFile, cfg.KeyFile = certFile, keyFile
			}

			agent := NewAgent(nfcManager, cfg, logger)
			if err := agent.Start(); err != nil {
				return fmt.Errorf("failed to start agent: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			logger.Info().Msg("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
			defer cancel()
			return agent.Stop(shutdownCtx)
		},
	}

	f := c.Flags()
	f.IntVar(&port, "port", config.DefaultPort, "port to listen on")
	f.StringVar(&host, "host", "", "address to bind (default all interfaces)")
	f.StringVar(&device, "device", "", "libnfc connection string (default auto-detect)")
	f.StringVar(&apiSecret, "api-secret", "", "secret required from clients (optional)")
	f.BoolVar(&noMDNS, "no-mdns", false, "disable mDNS advertisement")
	f.BoolVar(&strict, "strict", false, "accept only 8-digit card ids")
	f.StringVar(&certFile, "cert", "", "TLS certificate file")
	f.StringVar(&keyFile, "key", "", "TLS private key file")
	f.BoolVar(&tlsAuto, "tls-auto", false, "generate and trust a local certificate for wss://")
	f.StringSliceVar(&tagTypes, "tag-type", nil, "only report these tag types (repeatable)")
	return c
}

func decodeCmd() *cobra.Command {
	var (
		tag    string
		ndef   string
		action string
		strict bool
	)

	c := &cobra.Command{
		Use:   "decode",
		Short: "Decode a tag id and NDEF message and print the scan payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := nfc.ParseTagID(tag)
			if err != nil {
				return err
			}
			raw, err := protocol.ParseHexMessage(ndef)
			if err != nil {
				return err
			}

			extractor := nfc.NewExtractor()
			if strict {
				extractor = nfc.NewExtractor(nfc.WithStrictCardID())
			}
			result := extractor.Extract(id, raw, action)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(server.PayloadFromResult(result))
		},
	}

	c.Flags().StringVar(&tag, "tag", "", "tag id in hex (required)")
	c.Flags().StringVar(&ndef, "ndef", "", "raw NDEF message in hex")
	c.Flags().StringVar(&action, "action", nfc.ActionTagDiscovered, "discovery action to report")
	c.Flags().BoolVar(&strict, "strict", false, "accept only 8-digit card ids")
	_ = c.MarkFlagRequired("tag")
	return c
}

func devicesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List NFC devices found by libnfc",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			g.logger(cfg)

			devices, err := nfcManager.ListDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no devices found")
				return nil
			}
			for _, d := range devices {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.BuildInfo())
		},
	}
}
