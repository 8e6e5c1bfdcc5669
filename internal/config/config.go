// Package config provides configuration management for jjplan.
//
// Config file locations (priority order):
//  1. $JJPLAN_CONFIG
//  2. ./jjplan.yaml
//  3. $XDG_CONFIG_HOME/jjplan/config.yaml
//  4. ~/.config/jjplan/config.yaml
//  5. /etc/jjplan/config.yaml
//
// Command-line flags are applied on top of the loaded file by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"jjplan/internal/timer"
)

// ErrInvalidConfig is returned when a loaded config fails validation
var ErrInvalidConfig = errors.New("invalid config")

var configValidate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	// The event stream clears its own write deadline
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Path == "" && c.Store.Driver == "sqlite" {
		c.Store.Path = "./jjplan.db"
	}
	if c.Sessions.TTL == 0 {
		c.Sessions.TTL = Duration(2 * time.Hour)
	}
	if c.Sessions.SweepInterval == 0 {
		c.Sessions.SweepInterval = Duration(time.Minute)
	}
	if c.PreviewDepth == 0 {
		c.PreviewDepth = 2
	}
	if c.RateLimit.TapsPerMinute == 0 {
		c.RateLimit.TapsPerMinute = 30
	}

	def := timer.DefaultPlan()
	if c.Timer.Work == 0 {
		c.Timer.Work = Duration(def.Work)
	}
	if c.Timer.Rest == 0 {
		c.Timer.Rest = Duration(def.Rest)
	}
	if c.Timer.Rounds == 0 {
		c.Timer.Rounds = def.Rounds
	}
}

// Validate checks field constraints
func (c *Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// TimerPlan returns the configured roll timer defaults
func (c *Config) TimerPlan() timer.Plan {
	return timer.Plan{
		Work:   c.Timer.Work.Duration(),
		Rest:   c.Timer.Rest.Duration(),
		Rounds: c.Timer.Rounds,
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	dataset := c.Dataset.Path
	if dataset == "" {
		dataset = "embedded"
	}
	return fmt.Sprintf("addr=%s dataset=%s watch=%t store=%s preview_depth=%d",
		c.Server.Addr, dataset, c.Dataset.Watch, c.Store.Driver, c.PreviewDepth)
}
