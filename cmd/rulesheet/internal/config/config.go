package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileNames are the config files Load looks for, in order
var FileNames = []string{"rulesheet.yaml", "rulesheet.yml", "rulesheet.toml"}

// Config represents the rulesheet configuration file
type Config struct {
	Log    *LogConfig    `yaml:"log,omitempty" toml:"log,omitempty" validate:"required"`
	Server *ServerConfig `yaml:"server,omitempty" toml:"server,omitempty" validate:"required"`
	Styles *StylesConfig `yaml:"styles,omitempty" toml:"styles,omitempty" validate:"required"`
	Build  *BuildConfig  `yaml:"build,omitempty" toml:"build,omitempty" validate:"required"`
}

// LogConfig controls logging
type LogConfig struct {
	Level string `yaml:"level,omitempty" toml:"level,omitempty" validate:"oneof=trace debug info warn error"`

	// Human switches to console output instead of JSON lines
	Human bool `yaml:"human" toml:"human"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host,omitempty" toml:"host,omitempty" validate:"required"`
	Port int    `yaml:"port,omitempty" toml:"port,omitempty" validate:"min=1,max=65535"`

	// AllowedOrigins for the live endpoint; empty allows same-host only, "*" any
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty" toml:"allowedOrigins,omitempty"`

	// Watch reloads definition files when they change
	Watch bool `yaml:"watch" toml:"watch"`
}

// StylesConfig contains registry configuration
type StylesConfig struct {
	// Definitions are YAML files loaded into the registry at start
	Definitions []string `yaml:"definitions,omitempty" toml:"definitions,omitempty" validate:"dive,required"`

	DefaultSheet string `yaml:"defaultSheet,omitempty" toml:"defaultSheet,omitempty" validate:"required"`

	// RTL selects right-to-left variants when loading definitions
	RTL bool `yaml:"rtl" toml:"rtl"`

	// MaxEntries bounds the rule cache; 0 is unbounded
	MaxEntries int `yaml:"maxEntries,omitempty" toml:"maxEntries,omitempty" validate:"min=0"`
}

// BuildConfig contains build command configuration
type BuildConfig struct {
	Output   string `yaml:"output,omitempty" toml:"output,omitempty" validate:"required"`
	ClassMap string `yaml:"classMap,omitempty" toml:"classMap,omitempty"`
	CacheDir string `yaml:"cacheDir,omitempty" toml:"cacheDir,omitempty"`

	// CacheStrategy picks what the artifact cache evicts when over CacheMaxSize
	CacheStrategy string `yaml:"cacheStrategy,omitempty" toml:"cacheStrategy,omitempty" validate:"omitempty,oneof=lru lfu fifo"`

	// CacheMaxAge is a Go duration such as "168h"; "0" keeps entries forever
	CacheMaxAge string `yaml:"cacheMaxAge,omitempty" toml:"cacheMaxAge,omitempty"`

	// CacheMaxSize in bytes
	CacheMaxSize int64 `yaml:"cacheMaxSize,omitempty" toml:"cacheMaxSize,omitempty" validate:"min=0"`
}

// MaxAge parses CacheMaxAge
func (b *BuildConfig) MaxAge() (time.Duration, error) {
	if b.CacheMaxAge == "" {
		return 0, nil
	}
	return time.ParseDuration(b.CacheMaxAge)
}

// Load loads the first config file found in projectPath, or the defaults
// when there is none
func Load(projectPath string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(projectPath, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return DefaultConfig(), nil
}

// LoadFile loads a YAML or TOML config file, applies defaults and validates it
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

// Save writes the configuration as YAML
func Save(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Log: &LogConfig{
			Level: "info",
			Human: true,
		},
		Server: &ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Styles: &StylesConfig{
			DefaultSheet: "default",
		},
		Build: &BuildConfig{
			Output:        "dist/styles.css",
			ClassMap:      "dist/classes.json",
			CacheStrategy: "lru",
			CacheMaxAge:   "168h",
			CacheMaxSize:  64 << 20,
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Log == nil {
		config.Log = defaults.Log
	} else if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}

	if config.Server == nil {
		config.Server = defaults.Server
	} else {
		if config.Server.Host == "" {
			config.Server.Host = defaults.Server.Host
		}
		if config.Server.Port == 0 {
			config.Server.Port = defaults.Server.Port
		}
	}

	if config.Styles == nil {
		config.Styles = defaults.Styles
	} else if config.Styles.DefaultSheet == "" {
		config.Styles.DefaultSheet = defaults.Styles.DefaultSheet
	}

	if config.Build == nil {
		config.Build = defaults.Build
	} else {
		if config.Build.Output == "" {
			config.Build.Output = defaults.Build.Output
		}
		if config.Build.CacheStrategy == "" {
			config.Build.CacheStrategy = defaults.Build.CacheStrategy
		}
		if config.Build.CacheMaxAge == "" {
			config.Build.CacheMaxAge = defaults.Build.CacheMaxAge
		}
		if config.Build.CacheMaxSize == 0 {
			config.Build.CacheMaxSize = defaults.Build.CacheMaxSize
		}
	}
}

var validate = validator.New()

// Validate checks field constraints and reports every failing field
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		if _, err := c.Build.MaxAge(); err != nil {
			return fmt.Errorf("Config.Build.CacheMaxAge: %w", err)
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Addr returns the server listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
