// Package config loads the agent configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dotside-studios/rccard-agent/buildinfo"
)

// Log formats accepted by LogFormat.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

const (
	DefaultPort         = 18080
	DefaultPollInterval = 250 * time.Millisecond
)

// Config is the agent configuration. Zero values are replaced by defaults in
// Load; command line flags override file values.
type Config struct {
	Port      int    `yaml:"port"`
	Host      string `yaml:"host"`
	Device    string `yaml:"device"` // libnfc connection string; empty auto-detects
	APISecret string `yaml:"apiSecret"`
	MDNS      bool   `yaml:"mdns"`

	CertFile string `yaml:"certFile"`
	KeyFile  string `yaml:"keyFile"`
	// TLSAuto generates a locally trusted certificate when no CertFile is set.
	TLSAuto bool `yaml:"tlsAuto"`

	// StrictCardID accepts only ids with exactly eight hex digits.
	StrictCardID bool `yaml:"strictCardId"`

	// TagTypes restricts which tag types the scanner reports. Empty allows all.
	TagTypes []string `yaml:"tagTypes"`

	PollInterval time.Duration `yaml:"pollInterval"`
	LogFormat    string        `yaml:"logFormat"`
	Debug        bool          `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:         DefaultPort,
		MDNS:         true,
		PollInterval: DefaultPollInterval,
		LogFormat:    LogFormatConsole,
	}
}

// Dir returns the agent's directory under the user's config directory, or ""
// when it cannot be determined.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, buildinfo.DirName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error when optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = LogFormatConsole
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("pollInterval must not be negative"))
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown logFormat %q", c.LogFormat))
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		errs = append(errs, fmt.Errorf("certFile and keyFile must be set together"))
	}
	return errors.Join(errs...)
}
