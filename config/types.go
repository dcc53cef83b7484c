package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Defaults for the AEC media feed.
const (
	DefaultVersion    = "1.0"
	DefaultHost       = "mediafeed.aec.gov.au"
	DefaultPort       = 21
	DefaultUser       = "anonymous"
	DefaultTimeout    = "30s"
	DefaultMaxDepth   = 8
	DefaultInterval   = "5m"
	DefaultFileName   = "ausec.yml"
	anonymousPassword = "anonymous"
)

// Config represents the ausec.yml configuration.
type Config struct {
	Version  string        `yaml:"version" toml:"version" json:"version" jsonschema:"required,description=Configuration version (e.g. '1.0')"`
	Server   ServerConfig  `yaml:"server" toml:"server" json:"server" jsonschema:"description=Feed server connection"`
	Election string        `yaml:"election,omitempty" toml:"election,omitempty" json:"election,omitempty" jsonschema:"description=Election identifier to use when the server publishes more than one"`
	CacheDir string        `yaml:"cache_dir,omitempty" toml:"cache_dir,omitempty" json:"cache_dir,omitempty" jsonschema:"description=Directory downloaded bundles are kept in"`
	Listing  ListingConfig `yaml:"listing" toml:"listing" json:"listing" jsonschema:"description=Remote tree walk"`
	Watch    WatchConfig   `yaml:"watch" toml:"watch" json:"watch" jsonschema:"description=Polling for new results bundles"`

	// Extensions captures all other top-level keys, such as logging.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" json:"-" jsonschema:"-"`
}

// ServerConfig describes the FTP server.
type ServerConfig struct {
	Host        string `yaml:"host" toml:"host" json:"host" jsonschema:"minLength=1,description=FTP host name"`
	Port        int    `yaml:"port" toml:"port" json:"port" jsonschema:"minimum=1,maximum=65535,description=FTP control port"`
	User        string `yaml:"user" toml:"user" json:"user" jsonschema:"description=Login user (anonymous by default)"`
	Password    string `yaml:"password,omitempty" toml:"password,omitempty" json:"password,omitempty" jsonschema:"description=Login password"`
	Timeout     string `yaml:"timeout" toml:"timeout" json:"timeout" jsonschema:"description=Dial and command timeout (e.g. '30s')"`
	DisableEPSV bool   `yaml:"disable_epsv,omitempty" toml:"disable_epsv,omitempty" json:"disable_epsv,omitempty" jsonschema:"description=Use PASV instead of EPSV"`
}

// ListingConfig bounds the remote tree walk.
type ListingConfig struct {
	MaxDepth int      `yaml:"max_depth" toml:"max_depth" json:"max_depth" jsonschema:"minimum=1,description=Deepest directory level walked"`
	Exclude  []string `yaml:"exclude,omitempty" toml:"exclude,omitempty" json:"exclude,omitempty" jsonschema:"description=Paths to skip (.dockerignore syntax)"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Interval    string `yaml:"interval" toml:"interval" json:"interval" jsonschema:"description=Time between sessions (e.g. '5m')"`
	MetricsAddr string `yaml:"metrics_addr,omitempty" toml:"metrics_addr,omitempty" json:"metrics_addr,omitempty" jsonschema:"description=Listen address for the Prometheus endpoint"`
}

// TimeoutDuration parses Timeout.
func (s ServerConfig) TimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(s.Timeout)
}

// IntervalDuration parses Interval.
func (w WatchConfig) IntervalDuration() (time.Duration, error) {
	return time.ParseDuration(w.Interval)
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.User == "" {
		c.Server.User = DefaultUser
		if c.Server.Password == "" {
			c.Server.Password = anonymousPassword
		}
	}
	if c.Server.Timeout == "" {
		c.Server.Timeout = DefaultTimeout
	}
	if c.Listing.MaxDepth == 0 {
		c.Listing.MaxDepth = DefaultMaxDepth
	}
	if c.Watch.Interval == "" {
		c.Watch.Interval = DefaultInterval
	}
}

// UnmarshalExtension decodes a top-level section that Config does not model
// (for example "logging") into target, which must be a pointer. A missing
// key leaves target untouched.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
