package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Guards    GuardsConfig    `mapstructure:"guards"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	// Environment is "development" or "production". Only development
	// honors the rate limiter's loopback bypass.
	Environment string `mapstructure:"environment"`
}

type RateLimitConfig struct {
	// Store selects the counter backend: "memory" (default) or "redis".
	Store         string                `mapstructure:"store"`
	SweepInterval string                `mapstructure:"sweep_interval"`
	Tiers         map[string]TierConfig `mapstructure:"tiers"`
}

type TierConfig struct {
	MaxRequests int    `mapstructure:"max_requests"`
	Window      string `mapstructure:"window"`
}

type GuardsConfig struct {
	MaxBodyBytes        int64    `mapstructure:"max_body_bytes"`
	AllowedContentTypes []string `mapstructure:"allowed_content_types"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var globalConfig Config

func Load(configPath string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No file is fine; environment variables and defaults carry it.
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaultValues()

	return validate()
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Server.MetricsPort == 0 {
		globalConfig.Server.MetricsPort = 9090
	}
	if globalConfig.Server.Environment == "" {
		globalConfig.Server.Environment = "development"
	}
	if globalConfig.RateLimit.Store == "" {
		globalConfig.RateLimit.Store = "memory"
	}
	if globalConfig.RateLimit.SweepInterval == "" {
		globalConfig.RateLimit.SweepInterval = "1m"
	}
	if globalConfig.Guards.MaxBodyBytes == 0 {
		globalConfig.Guards.MaxBodyBytes = 1 << 20
	}
	if len(globalConfig.Guards.AllowedContentTypes) == 0 {
		globalConfig.Guards.AllowedContentTypes = []string{"application/json"}
	}
}

func validate() error {
	if s := globalConfig.RateLimit.Store; s != "memory" && s != "redis" {
		return fmt.Errorf("rate_limit.store must be memory or redis, got %q", s)
	}
	if _, err := time.ParseDuration(globalConfig.RateLimit.SweepInterval); err != nil {
		return fmt.Errorf("invalid rate_limit.sweep_interval: %w", err)
	}
	for name, tier := range globalConfig.RateLimit.Tiers {
		if tier.MaxRequests <= 0 {
			return fmt.Errorf("tier %s requires a positive max_requests", name)
		}
		if _, err := time.ParseDuration(tier.Window); err != nil {
			return fmt.Errorf("tier %s has an invalid window: %w", name, err)
		}
	}
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}
