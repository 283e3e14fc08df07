package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the daemon looks for its configuration when no
// --config flag is given.
const DefaultPath = "config.yaml"

// Defaults applied by Load for fields the file leaves unset.
const (
	DefaultRefreshSecs = 60
	DefaultTimeoutSecs = 10
	DefaultSubsystem   = "w1"
	DefaultLogLevel    = "info"
)

// Config is the daemon configuration.
type Config struct {
	Registry    Registry    `yaml:"registry"`
	Persistence Persistence `yaml:"persistence"`
	Bus         Bus         `yaml:"bus"`
	Logging     Logging     `yaml:"logging"`
	// Status is optional; the endpoint stays off when the section is
	// absent.
	Status *Status `yaml:"status,omitempty"`
}

// Registry describes the remote key registry.
type Registry struct {
	// URL is the endpoint fetched on every refresh.
	URL string `yaml:"url"`
	// Token is sent in the X-TOKEN header.
	Token string `yaml:"token"`
	// RefreshSecs is the pause between refresh cycles.
	RefreshSecs int `yaml:"refresh_secs"`
	// TimeoutSecs bounds a single registry request.
	TimeoutSecs int `yaml:"timeout_secs"`
}

// RefreshInterval returns the refresh pause as a duration.
func (r Registry) RefreshInterval() time.Duration {
	return time.Duration(r.RefreshSecs) * time.Second
}

// Timeout returns the request timeout as a duration.
func (r Registry) Timeout() time.Duration {
	return time.Duration(r.TimeoutSecs) * time.Second
}

// Persistence locates the on-disk key list.
type Persistence struct {
	Path string `yaml:"path"`
}

// Bus selects which kernel subsystem to watch for devices.
type Bus struct {
	Subsystem string `yaml:"subsystem"`
}

// Logging controls daemon log output.
type Logging struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// Status configures the read-only HTTP endpoint.
type Status struct {
	// Addr is the host:port to listen on, e.g. "0.0.0.0:8089".
	Addr string `yaml:"addr"`
	// Advertise publishes the endpoint over mDNS when true.
	Advertise bool `yaml:"advertise"`
	// Instance overrides the mDNS instance name (host name by default).
	Instance string `yaml:"instance"`
}

// Port extracts the listen port, which mDNS advertisements need on its
// own.
func (s *Status) Port() (int, error) {
	_, portText, err := net.SplitHostPort(s.Addr)
	if err != nil {
		return 0, fmt.Errorf("invalid status addr %q: %w", s.Addr, err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		return 0, fmt.Errorf("invalid status port %q: %w", portText, err)
	}
	return port, nil
}

// Load reads, defaults, and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Registry.RefreshSecs == 0 {
		c.Registry.RefreshSecs = DefaultRefreshSecs
	}
	if c.Registry.TimeoutSecs == 0 {
		c.Registry.TimeoutSecs = DefaultTimeoutSecs
	}
	if c.Bus.Subsystem == "" {
		c.Bus.Subsystem = DefaultSubsystem
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

func (c *Config) validate() error {
	if c.Registry.URL == "" {
		return fmt.Errorf("registry.url is required")
	}
	u, err := url.Parse(c.Registry.URL)
	if err != nil {
		return fmt.Errorf("registry.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("registry.url must be http or https, got %q", c.Registry.URL)
	}
	if c.Registry.Token == "" {
		return fmt.Errorf("registry.token is required")
	}
	if c.Registry.RefreshSecs < 0 {
		return fmt.Errorf("registry.refresh_secs must be positive, got %d", c.Registry.RefreshSecs)
	}
	if c.Registry.TimeoutSecs < 0 {
		return fmt.Errorf("registry.timeout_secs must be positive, got %d", c.Registry.TimeoutSecs)
	}
	if c.Persistence.Path == "" {
		return fmt.Errorf("persistence.path is required")
	}
	if c.Status != nil {
		if c.Status.Addr == "" {
			return fmt.Errorf("status.addr is required when the status section is present")
		}
		if _, err := c.Status.Port(); err != nil {
			return err
		}
	}
	return nil
}
