package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v2"
)

// Personalities select which mode naming table flrig expects.
const (
	PersonalityGeneric = "generic"
	PersonalityYaesu   = "yaesu"
)

// Config represents the rigsync configuration
type Config struct {
	Flrig struct {
		Host         string `yaml:"host"`
		Port         int    `yaml:"port"`
		Personality  string `yaml:"personality"`
		CWBandwidth  int    `yaml:"cw_bandwidth"`
		PowerPercent bool   `yaml:"power_percent"`
		Mock         bool   `yaml:"mock"`
	} `yaml:"flrig"`

	Wavelog struct {
		URL              string `yaml:"url"`
		QSOURL           string `yaml:"qso_url"`
		Key              string `yaml:"key"`
		Identifier       string `yaml:"identifier"`
		StationProfileID int    `yaml:"station_profile_id"`
		Interval         int    `yaml:"interval"` // milliseconds
		Timeout          int    `yaml:"timeout"`  // seconds
	} `yaml:"wavelog"`

	CAT struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"cat"`

	WSJTX struct {
		Enabled    *bool  `yaml:"enabled"`
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		ErrTimeout int    `yaml:"err_timeout"` // seconds
	} `yaml:"wsjtx"`

	Storage struct {
		Enabled      bool   `yaml:"enabled"`
		DatabasePath string `yaml:"database_path"`
		MaxContacts  int    `yaml:"max_contacts"`
	} `yaml:"storage"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		Console    bool   `yaml:"console"`
		Structured bool   `yaml:"structured"`
		MaxSize    int    `yaml:"max_size"`    // megabytes
		MaxBackups int    `yaml:"max_backups"` // files
		MaxAge     int    `yaml:"max_age"`     // days
		Compress   bool   `yaml:"compress"`
	} `yaml:"logging"`
}

// DefaultConfigPath returns the XDG config file if one exists, else "config.yaml".
func DefaultConfigPath() string {
	if path, err := xdg.SearchConfigFile("rigsync/config.yaml"); err == nil {
		return path
	}
	return "config.yaml"
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Flrig.Host == "" {
		c.Flrig.Host = "127.0.0.1"
	}
	if c.Flrig.Port == 0 {
		c.Flrig.Port = 12345
	}
	if c.Flrig.Personality == "" {
		c.Flrig.Personality = PersonalityGeneric
	}
	c.Flrig.Personality = strings.ToLower(c.Flrig.Personality)
	if c.Wavelog.Interval == 0 {
		c.Wavelog.Interval = 1000
	}
	if c.Wavelog.Timeout == 0 {
		c.Wavelog.Timeout = 10
	}
	if c.CAT.Host == "" {
		c.CAT.Host = "127.0.0.1"
	}
	if c.CAT.Port == 0 {
		c.CAT.Port = 54321
	}
	if c.WSJTX.Enabled == nil {
		enabled := true
		c.WSJTX.Enabled = &enabled
	}
	if c.WSJTX.Host == "" {
		c.WSJTX.Host = "127.0.0.1"
	}
	if c.WSJTX.Port == 0 {
		c.WSJTX.Port = 2237
	}
	if c.WSJTX.ErrTimeout == 0 {
		c.WSJTX.ErrTimeout = 5
	}
	if c.Storage.MaxContacts == 0 {
		c.Storage.MaxContacts = 10000
	}
	if c.Storage.Enabled && c.Storage.DatabasePath == "" {
		if path, err := xdg.DataFile("rigsync/contacts.db"); err == nil {
			c.Storage.DatabasePath = path
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSize == 0 {
		c.Logging.MaxSize = 100
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 5
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = 30
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Wavelog.URL == "" {
		return fmt.Errorf("wavelog url is required")
	}
	if c.Wavelog.Key == "" {
		return fmt.Errorf("wavelog key is required")
	}
	if c.Wavelog.Identifier == "" {
		return fmt.Errorf("wavelog identifier is required")
	}
	if c.WSJTXEnabled() && c.Wavelog.QSOURL == "" {
		return fmt.Errorf("wavelog qso_url is required when wsjtx forwarding is enabled")
	}
	if c.Wavelog.Interval < 0 {
		return fmt.Errorf("wavelog interval must be positive, got %d", c.Wavelog.Interval)
	}
	switch c.Flrig.Personality {
	case PersonalityGeneric, PersonalityYaesu:
	default:
		return fmt.Errorf("unknown flrig personality %q (want %s or %s)",
			c.Flrig.Personality, PersonalityGeneric, PersonalityYaesu)
	}
	if c.Flrig.CWBandwidth < 0 {
		return fmt.Errorf("flrig cw_bandwidth must not be negative")
	}
	ports := []struct {
		name string
		port int
	}{
		{"flrig", c.Flrig.Port},
		{"cat", c.CAT.Port},
		{"wsjtx", c.WSJTX.Port},
	}
	for _, p := range ports {
		if p.port < 1 || p.port > 65535 {
			return fmt.Errorf("%s port %d out of range", p.name, p.port)
		}
	}
	if c.WSJTX.ErrTimeout < 0 {
		return fmt.Errorf("wsjtx err_timeout must not be negative, got %d", c.WSJTX.ErrTimeout)
	}
	if c.Storage.Enabled && c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage database_path is required (no XDG data directory available)")
	}
	return nil
}

// VendorQualified reports whether flrig expects sideband-qualified mode labels.
func (c *Config) VendorQualified() bool {
	return c.Flrig.Personality == PersonalityYaesu
}

// WSJTXEnabled reports whether the broadcast listener should run.
func (c *Config) WSJTXEnabled() bool {
	return c.WSJTX.Enabled == nil || *c.WSJTX.Enabled
}

// FlrigURL returns the XML-RPC endpoint of flrig.
func (c *Config) FlrigURL() string {
	return fmt.Sprintf("http://%s:%d", c.Flrig.Host, c.Flrig.Port)
}

// PollInterval returns the rig polling period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Wavelog.Interval) * time.Millisecond
}

// UploadTimeout returns the HTTP timeout for logging service calls.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Wavelog.Timeout) * time.Second
}

// ErrTimeout returns the pause after a UDP receive error.
func (c *Config) ErrTimeout() time.Duration {
	return time.Duration(c.WSJTX.ErrTimeout) * time.Second
}

// CATAddress returns the bind address of the QSY HTTP server.
func (c *Config) CATAddress() string {
	return fmt.Sprintf("%s:%d", c.CAT.Host, c.CAT.Port)
}

// WSJTXAddress returns the bind address of the broadcast listener.
func (c *Config) WSJTXAddress() string {
	return fmt.Sprintf("%s:%d", c.WSJTX.Host, c.WSJTX.Port)
}
