// Package config resolves runtime settings from defaults, an optional YAML
// file and AMBITIONS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "AMBITIONS"

// Keys shared by viper, flags and the environment (AMBITIONS_DB, ...).
const (
	KeyDB              = "db"
	KeyListen          = "listen"
	KeyAPIToken        = "api_token"
	KeyManagerEmail    = "manager_email"
	KeyUserEmail       = "user_email"
	KeyRosterFile      = "roster_file"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyShutdownTimeout = "shutdown_timeout"
	KeyOTelEnabled     = "otel.enabled"
	KeyOTelStdout      = "otel.stdout"
	KeyOTelEndpoint    = "otel.metrics_endpoint"
	KeyOTelService     = "otel.service_name"
)

type OTelConfig struct {
	Enabled bool
	// Stdout exports spans and metrics as JSON to stderr.
	Stdout bool
	// MetricsEndpoint is an OTLP/HTTP collector address (host:port).
	MetricsEndpoint string
	ServiceName     string
}

type Config struct {
	DBPath string
	Listen string
	// APIToken, when set, must be presented as a bearer token on every API call.
	APIToken string
	// ManagerEmail is the legacy single approver address. Empty disables it.
	ManagerEmail string
	// UserEmail identifies the CLI caller; the API takes it from a header.
	UserEmail       string
	RosterFile      string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	OTel            OTelConfig
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		DBPath:          defaultDBPath(),
		Listen:          "127.0.0.1:8080",
		LogLevel:        "info",
		LogFormat:       "text",
		ShutdownTimeout: 10 * time.Second,
		OTel: OTelConfig{
			ServiceName: "ambitions",
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ambitions.db"
	}
	return filepath.Join(home, ".ambitions", "ambitions.db")
}

// NewViper returns a viper instance with defaults and environment binding
// applied. Flags may be bound to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault(KeyDB, d.DBPath)
	v.SetDefault(KeyListen, d.Listen)
	v.SetDefault(KeyAPIToken, "")
	v.SetDefault(KeyManagerEmail, "")
	v.SetDefault(KeyUserEmail, "")
	v.SetDefault(KeyRosterFile, "")
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyShutdownTimeout, d.ShutdownTimeout)
	v.SetDefault(KeyOTelEnabled, false)
	v.SetDefault(KeyOTelStdout, false)
	v.SetDefault(KeyOTelEndpoint, "")
	v.SetDefault(KeyOTelService, d.OTel.ServiceName)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (if non-empty) or ~/.ambitions/config.yaml (if
// present) into v and returns the resolved Config.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(home, ".ambitions"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := Config{
		DBPath:          v.GetString(KeyDB),
		Listen:          v.GetString(KeyListen),
		APIToken:        v.GetString(KeyAPIToken),
		ManagerEmail:    strings.TrimSpace(v.GetString(KeyManagerEmail)),
		UserEmail:       strings.TrimSpace(v.GetString(KeyUserEmail)),
		RosterFile:      v.GetString(KeyRosterFile),
		LogLevel:        strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:       strings.ToLower(v.GetString(KeyLogFormat)),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		OTel: OTelConfig{
			Enabled:         v.GetBool(KeyOTelEnabled),
			Stdout:          v.GetBool(KeyOTelStdout),
			MetricsEndpoint: v.GetString(KeyOTelEndpoint),
			ServiceName:     v.GetString(KeyOTelService),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("%s must not be empty", KeyDB)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%s must be text or json, got %q", KeyLogFormat, c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyShutdownTimeout)
	}
	if c.ManagerEmail != "" && !strings.Contains(c.ManagerEmail, "@") {
		return fmt.Errorf("%s %q is not an email address", KeyManagerEmail, c.ManagerEmail)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%s %q is not one of debug, info, warn, error", KeyLogLevel, s)
}

// NewLogger builds the process logger described by c.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
