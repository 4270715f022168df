// Package config provides configuration loading and validation for the
// liftctl controller and car binaries.
//
// Configuration file: optional, passed via -config (YAML).
// Schema version: 1
//
// spec.md's required CLI arguments (car name/lowest-floor/highest-floor/
// delay; call source/destination; carctl name/operation) are plain flag
// and positional parsing — see cmd/*/main.go. The YAML layer here covers
// only the ambient knobs the CLI contract is silent on: listen/controller/
// metrics addresses, the carstate socket directory, log level/format,
// reconnect backoff, and ledger path.
//
// Validation:
//   - All required fields must be present.
//   - Numeric ranges enforced (delays/timeouts > 0).
//   - Invalid config on startup: the binary refuses to start (fatal error).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version, GitCommit, BuildTime can be set at build time via -ldflags -X.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// ControllerConfig is the root configuration structure for the controller
// binary. All fields have defaults; see ControllerDefaults() for values.
type ControllerConfig struct {
	// SchemaVersion must be "1".
	SchemaVersion string `yaml:"schema_version"`

	// ListenAddr is the TCP address the controller accepts call-pad and
	// car connections on. Default: 127.0.0.1:3000.
	ListenAddr string `yaml:"listen_addr"`

	// Observability configures metrics and logging.
	Observability ObservabilityConfig `yaml:"observability"`

	// Ledger configures the ephemeral ride-event ledger.
	Ledger LedgerConfig `yaml:"ledger"`
}

// CarConfig is the root configuration structure for the car binary.
// All fields have defaults; see CarDefaults() for values.
type CarConfig struct {
	// SchemaVersion must be "1".
	SchemaVersion string `yaml:"schema_version"`

	// ControllerAddr is the controller's TCP address this car dials.
	// Default: 127.0.0.1:3000.
	ControllerAddr string `yaml:"controller_addr"`

	// SocketDir is the directory holding the car's carstate Unix socket.
	// Default: /run/liftctl.
	SocketDir string `yaml:"socket_dir"`

	// ReconnectBackoff is parsed and validated but not read by the car's
	// controller session, which retries a failed dial after the car's
	// delay argument. Default: 1s.
	ReconnectBackoff time.Duration `yaml:"reconnect_backoff"`

	// Observability configures metrics and logging.
	Observability ObservabilityConfig `yaml:"observability"`
}

// ObservabilityConfig holds metrics and logging parameters.
type ObservabilityConfig struct {
	// MetricsAddr is the Prometheus metrics HTTP bind address.
	// Default: 127.0.0.1:9090 (controller), 127.0.0.1:9091 (car).
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls the minimum log level (debug, info, warn, error).
	// Default: info.
	LogLevel string `yaml:"log_level"`

	// LogFormat controls the log output format (json, console).
	// Default: json.
	LogFormat string `yaml:"log_format"`
}

// LedgerConfig holds the ephemeral ride-event ledger's parameters.
type LedgerConfig struct {
	// Path is the BoltDB file path. Empty means a fresh temp file is
	// used (and removed on clean shutdown) — see internal/ledger.
	Path string `yaml:"path"`
}

// ControllerDefaults returns a ControllerConfig populated with defaults.
func ControllerDefaults() ControllerConfig {
	return ControllerConfig{
		SchemaVersion: "1",
		ListenAddr:    "127.0.0.1:3000",
		Observability: ObservabilityConfig{
			MetricsAddr: "127.0.0.1:9090",
			LogLevel:    "info",
			LogFormat:   "json",
		},
		Ledger: LedgerConfig{},
	}
}

// CarDefaults returns a CarConfig populated with defaults.
func CarDefaults() CarConfig {
	return CarConfig{
		SchemaVersion:    "1",
		ControllerAddr:   "127.0.0.1:3000",
		SocketDir:        "/run/liftctl",
		ReconnectBackoff: time.Second,
		Observability: ObservabilityConfig{
			MetricsAddr: "127.0.0.1:9091",
			LogLevel:    "info",
			LogFormat:   "json",
		},
	}
}

// LoadController reads and validates a controller config file. Returns
// the merged config (defaults overridden by file values).
func LoadController(path string) (*ControllerConfig, error) {
	cfg := ControllerDefaults()
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.LoadController: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.LoadController: parse %q: %w", path, err)
	}
	if err := ValidateController(&cfg); err != nil {
		return nil, fmt.Errorf("config.LoadController: validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadCar reads and validates a car config file. Returns the merged
// config (defaults overridden by file values).
func LoadCar(path string) (*CarConfig, error) {
	cfg := CarDefaults()
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.LoadCar: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.LoadCar: parse %q: %w", path, err)
	}
	if err := ValidateCar(&cfg); err != nil {
		return nil, fmt.Errorf("config.LoadCar: validation failed: %w", err)
	}
	return &cfg, nil
}

// ValidateController checks a ControllerConfig for correctness, returning
// a descriptive error listing all violations found.
func ValidateController(cfg *ControllerConfig) error {
	var errs []string

	if cfg.SchemaVersion != "1" {
		errs = append(errs, fmt.Sprintf("schema_version must be \"1\", got %q", cfg.SchemaVersion))
	}
	if cfg.ListenAddr == "" {
		errs = append(errs, "listen_addr must not be empty")
	}
	errs = append(errs, validateObservability(cfg.Observability)...)

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", joinStrings(errs, "\n  - "))
	}
	return nil
}

// ValidateCar checks a CarConfig for correctness, returning a descriptive
// error listing all violations found.
func ValidateCar(cfg *CarConfig) error {
	var errs []string

	if cfg.SchemaVersion != "1" {
		errs = append(errs, fmt.Sprintf("schema_version must be \"1\", got %q", cfg.SchemaVersion))
	}
	if cfg.ControllerAddr == "" {
		errs = append(errs, "controller_addr must not be empty")
	}
	if cfg.SocketDir == "" {
		errs = append(errs, "socket_dir must not be empty")
	}
	if cfg.ReconnectBackoff <= 0 {
		errs = append(errs, fmt.Sprintf("reconnect_backoff must be > 0, got %s", cfg.ReconnectBackoff))
	}
	errs = append(errs, validateObservability(cfg.Observability)...)

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", joinStrings(errs, "\n  - "))
	}
	return nil
}

func validateObservability(o ObservabilityConfig) []string {
	var errs []string
	switch o.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("observability.log_level must be one of debug/info/warn/error, got %q", o.LogLevel))
	}
	switch o.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("observability.log_format must be json or console, got %q", o.LogFormat))
	}
	return errs
}

// joinStrings joins a slice of strings with a separator.
func joinStrings(ss []string, sep string) string {
	if len(ss) == 0 {
		return ""
	}
	result := ss[0]
	for _, s := range ss[1:] {
		result += sep + s
	}
	return result
}
