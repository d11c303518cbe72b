package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests configuration loading and validation
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
}

// SetupTest creates a scratch directory for config files
func (s *ConfigTestSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
}

func (s *ConfigTestSuite) writeConfig(body string) string {
	path := filepath.Join(s.tempDir, "nodedash.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestDefaultIsValid tests that the built-in defaults pass validation
func (s *ConfigTestSuite) TestDefaultIsValid() {
	cfg := Default()
	s.NoError(cfg.Validate())
	s.Equal("blockdag-testnet-network", cfg.Logs.DefaultContainer)
	s.Equal(600, cfg.Logs.DefaultTail)
	s.Equal(2*time.Minute, cfg.Classifier.Freshness)
	s.Equal("auto", cfg.Runtime.Elevation)
}

// TestLoadWithoutFile tests loading with no config file
func (s *ConfigTestSuite) TestLoadWithoutFile() {
	cfg, err := Load("")
	s.Require().NoError(err)
	s.Equal(Default().Server.Addr, cfg.Server.Addr)
}

// TestLoadFile tests YAML overrides including durations
func (s *ConfigTestSuite) TestLoadFile() {
	path := s.writeConfig(`
server:
  addr: ":9090"
  refresh_interval: 15s
runtime:
  binary: podman
  elevation: never
logs:
  default_container: geth-mainnet
  default_tail: 200
classifier:
  freshness: 45s
`)

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal(":9090", cfg.Server.Addr)
	s.Equal(15*time.Second, cfg.Server.RefreshInterval)
	s.Equal("podman", cfg.Runtime.Binary)
	s.Equal("never", cfg.Runtime.Elevation)
	s.Equal("geth-mainnet", cfg.Logs.DefaultContainer)
	s.Equal(200, cfg.Logs.DefaultTail)
	s.Equal(45*time.Second, cfg.Classifier.Freshness)

	// Untouched keys keep their defaults
	s.Equal(Default().Probe.ReadinessPath, cfg.Probe.ReadinessPath)
}

// TestLoadMissingFile tests that an explicit but missing file is an error
func (s *ConfigTestSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(s.tempDir, "missing.yaml"))
	s.Error(err)
	s.Contains(err.Error(), "read config")
}

// TestLoadMalformedFile tests YAML syntax errors
func (s *ConfigTestSuite) TestLoadMalformedFile() {
	path := s.writeConfig("server: [unterminated")
	_, err := Load(path)
	s.Error(err)
	s.Contains(err.Error(), "parse config")
}

// TestEnvOverrides tests NODEDASH_* environment variables
func (s *ConfigTestSuite) TestEnvOverrides() {
	path := s.writeConfig("logs:\n  default_container: from-file\n")

	s.T().Setenv("NODEDASH_CONTAINER", "from-env")
	s.T().Setenv("NODEDASH_FRESHNESS", "90s")
	s.T().Setenv("NODEDASH_TAIL", "250")
	s.T().Setenv("NODEDASH_RATE_LIMIT", "2.5")

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal("from-env", cfg.Logs.DefaultContainer)
	s.Equal(90*time.Second, cfg.Classifier.Freshness)
	s.Equal(250, cfg.Logs.DefaultTail)
	s.InDelta(2.5, cfg.Server.RateLimit, 0.0001)
}

// TestEnvInvalidValuesIgnored tests that unparsable env values keep the previous value
func (s *ConfigTestSuite) TestEnvInvalidValuesIgnored() {
	s.T().Setenv("NODEDASH_FRESHNESS", "soon")
	s.T().Setenv("NODEDASH_TAIL", "many")

	cfg, err := Load("")
	s.Require().NoError(err)
	s.Equal(Default().Classifier.Freshness, cfg.Classifier.Freshness)
	s.Equal(Default().Logs.DefaultTail, cfg.Logs.DefaultTail)
}

// TestValidateRejects tests validation failures
func (s *ConfigTestSuite) TestValidateRejects() {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero freshness", func(c *Config) { c.Classifier.Freshness = 0 }},
		{"unknown elevation", func(c *Config) { c.Runtime.Elevation = "maybe" }},
		{"empty binary", func(c *Config) { c.Runtime.Binary = "" }},
		{"relative probe path", func(c *Config) { c.Probe.ReadinessPath = "ready" }},
		{"bad probe url", func(c *Config) { c.Probe.BaseURL = "not a url" }},
		{"max tail below default", func(c *Config) { c.Logs.MaxTail = 10 }},
		{"max since below default", func(c *Config) { c.Logs.MaxSince = time.Minute }},
		{"refresh too fast", func(c *Config) { c.Server.RefreshInterval = 100 * time.Millisecond }},
		{"unknown time zone", func(c *Config) { c.Server.TimeZone = "Mars/Olympus" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			s.Error(err)
			s.Contains(err.Error(), "invalid config")
		})
	}
}

// TestLocation tests time zone resolution
func (s *ConfigTestSuite) TestLocation() {
	cfg := Default()
	cfg.Server.TimeZone = ""
	s.Equal(time.UTC, cfg.Location())

	cfg.Server.TimeZone = "UTC"
	s.Equal("UTC", cfg.Location().String())

	cfg.Server.TimeZone = "Nowhere/Invalid"
	s.Equal(time.UTC, cfg.Location())
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
