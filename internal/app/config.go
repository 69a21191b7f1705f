package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the authorization core.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Session    SessionConfig    `mapstructure:"session"`
	Bootstrap  BootstrapConfig  `mapstructure:"bootstrap"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// SessionConfig tunes the access-token state machine.
type SessionConfig struct {
	// IdleTimeout is the sliding idle window after which a token expires.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// TokenLength is the byte length of generated token ids.
	TokenLength int `mapstructure:"token_length"`
	// Sweep controls the optional background expiry sweep.
	Sweep SweepConfig `mapstructure:"sweep"`
}

// SweepConfig controls the periodic expired-token sweep.
type SweepConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// BootstrapConfig identifies the seeded administrator. An empty password is
// replaced by a generated one at startup.
type BootstrapConfig struct {
	AdminUserID   string `mapstructure:"admin_user_id"`
	AdminLogin    string `mapstructure:"admin_login"`
	AdminPassword string `mapstructure:"admin_password"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("AUTHCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("session.idle_timeout", "30m")
	v.SetDefault("session.token_length", 32)
	v.SetDefault("session.sweep.enabled", true)
	v.SetDefault("session.sweep.schedule", "@hourly")

	v.SetDefault("bootstrap.admin_user_id", "admin")
	v.SetDefault("bootstrap.admin_login", "admin")
	v.SetDefault("bootstrap.admin_password", "")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
