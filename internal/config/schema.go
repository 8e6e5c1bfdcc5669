package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version      int             `yaml:"version"`
	Server       ServerConfig    `yaml:"server"`
	Dataset      DatasetConfig   `yaml:"dataset"`
	Store        StoreConfig     `yaml:"store"`
	Sessions     SessionConfig   `yaml:"sessions"`
	PreviewDepth int             `yaml:"preview_depth" validate:"gte=1,lte=8"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
	Timer        TimerConfig     `yaml:"timer"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr         string   `yaml:"addr" validate:"required"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// DatasetConfig selects the game plan dataset. An empty path means the
// dataset compiled into the binary.
type DatasetConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// StoreConfig selects the tap log store
type StoreConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite badger memory"`
	Path   string `yaml:"path"`
}

// SessionConfig controls navigation session expiry. A negative TTL keeps
// sessions until they are ended.
type SessionConfig struct {
	TTL           Duration `yaml:"ttl"`
	SweepInterval Duration `yaml:"sweep_interval" validate:"gt=0"`
}

// RateLimitConfig throttles tap writes. A negative value disables the limit.
type RateLimitConfig struct {
	TapsPerMinute int `yaml:"taps_per_minute"`
}

// TimerConfig holds the roll timer defaults
type TimerConfig struct {
	Work   Duration `yaml:"work"`
	Rest   Duration `yaml:"rest"`
	Rounds int      `yaml:"rounds" validate:"gte=1,lte=1000"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
