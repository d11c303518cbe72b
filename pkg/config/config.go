package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // display zones must resolve on minimal hosts

	"nodedash/pkg/log"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const envPrefix = "NODEDASH_"

var validate = validator.New()

// Config is the full dashboard configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Runtime    RuntimeConfig    `yaml:"runtime"`
	Probe      ProbeConfig      `yaml:"probe"`
	Logs       LogsConfig       `yaml:"logs"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gt=0"`
	RefreshInterval time.Duration `yaml:"refresh_interval" validate:"gte=1s"`
	RateLimit       float64       `yaml:"rate_limit" validate:"gte=0"` // requests per second per client, 0 disables
	TimeZone        string        `yaml:"time_zone" validate:"omitempty,timezone"`
}

type RuntimeConfig struct {
	Binary         string        `yaml:"binary" validate:"required"`
	Elevation      string        `yaml:"elevation" validate:"oneof=auto never always"`
	CommandTimeout time.Duration `yaml:"command_timeout" validate:"gt=0"`
}

type ProbeConfig struct {
	BaseURL       string        `yaml:"base_url" validate:"required,url"`
	ReadinessPath string        `yaml:"readiness_path" validate:"required,startswith=/"`
	LivenessPath  string        `yaml:"liveness_path" validate:"required,startswith=/"`
	Timeout       time.Duration `yaml:"timeout" validate:"gte=1s"`
}

type LogsConfig struct {
	DefaultContainer string        `yaml:"default_container" validate:"required,max=128"`
	DefaultSince     time.Duration `yaml:"default_since" validate:"gt=0"`
	MaxSince         time.Duration `yaml:"max_since" validate:"gtefield=DefaultSince"`
	DefaultTail      int           `yaml:"default_tail" validate:"gt=0"`
	MaxTail          int           `yaml:"max_tail" validate:"gtefield=DefaultTail"`
}

// ClassifierConfig tunes the status decision table.
type ClassifierConfig struct {
	// Freshness is the maximum age of the newest log line that still
	// counts as evidence of a live process.
	Freshness time.Duration `yaml:"freshness" validate:"gt=0"`
	ClockSkew time.Duration `yaml:"clock_skew" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			RequestTimeout:  20 * time.Second,
			RefreshInterval: 10 * time.Second,
			RateLimit:       5,
			TimeZone:        "America/New_York",
		},
		Runtime: RuntimeConfig{
			Binary:         "docker",
			Elevation:      "auto",
			CommandTimeout: 8 * time.Second,
		},
		Probe: ProbeConfig{
			BaseURL:       "http://127.0.0.1:8080",
			ReadinessPath: "/ready",
			LivenessPath:  "/health",
			Timeout:       3 * time.Second,
		},
		Logs: LogsConfig{
			DefaultContainer: "blockdag-testnet-network",
			DefaultSince:     30 * time.Minute,
			MaxSince:         24 * time.Hour,
			DefaultTail:      600,
			MaxTail:          5000,
		},
		Classifier: ClassifierConfig{
			Freshness: 2 * time.Minute,
			ClockSkew: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: log.FormatConsole,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and NODEDASH_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's command line
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks all fields against their constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			first := validationErrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", first.Namespace(), first.Tag(), first.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location returns the display time zone, UTC when unset or unknown.
func (c *Config) Location() *time.Location {
	if c.Server.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Server.TimeZone)
	if err != nil {
		log.Warn().Err(err).Str("time_zone", c.Server.TimeZone).Msg("Unknown time zone, using UTC")
		return time.UTC
	}
	return loc
}

func applyEnv(cfg *Config) {
	envString("ADDR", &cfg.Server.Addr)
	envDuration("REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	envDuration("REFRESH_INTERVAL", &cfg.Server.RefreshInterval)
	envFloat("RATE_LIMIT", &cfg.Server.RateLimit)
	envString("TIME_ZONE", &cfg.Server.TimeZone)

	envString("RUNTIME", &cfg.Runtime.Binary)
	envString("ELEVATION", &cfg.Runtime.Elevation)
	envDuration("COMMAND_TIMEOUT", &cfg.Runtime.CommandTimeout)

	envString("PROBE_BASE_URL", &cfg.Probe.BaseURL)
	envString("READINESS_PATH", &cfg.Probe.ReadinessPath)
	envString("LIVENESS_PATH", &cfg.Probe.LivenessPath)
	envDuration("PROBE_TIMEOUT", &cfg.Probe.Timeout)

	envString("CONTAINER", &cfg.Logs.DefaultContainer)
	envDuration("SINCE", &cfg.Logs.DefaultSince)
	envDuration("MAX_SINCE", &cfg.Logs.MaxSince)
	envInt("TAIL", &cfg.Logs.DefaultTail)
	envInt("MAX_TAIL", &cfg.Logs.MaxTail)

	envDuration("FRESHNESS", &cfg.Classifier.Freshness)
	envDuration("CLOCK_SKEW", &cfg.Classifier.ClockSkew)

	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("LOG_FORMAT", &cfg.Log.Format)
}

func envString(key string, dst *string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Err(err).Str("env", envPrefix+key).Msg("Ignoring invalid duration")
		return
	}
	*dst = d
}

func envInt(key string, dst *int) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Err(err).Str("env", envPrefix+key).Msg("Ignoring invalid integer")
		return
	}
	*dst = i
}

func envFloat(key string, dst *float64) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Err(err).Str("env", envPrefix+key).Msg("Ignoring invalid number")
		return
	}
	*dst = f
}
