package application

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines condition sweep configuration.
type Config struct {
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
	LivenessHorizon time.Duration `yaml:"liveness_horizon"`
	Disabled        bool          `yaml:"disabled"`
}

// LoadConfig loads sweep config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		SweepInterval:   getenvDuration("MONITOR_SWEEP_INTERVAL", time.Minute),
		QueryTimeout:    getenvDuration("MONITOR_QUERY_TIMEOUT", 30*time.Second),
		LivenessHorizon: getenvDuration("MONITOR_LIVENESS_HORIZON", 10*time.Minute),
		Disabled:        getenvBool("MONITOR_SWEEP_DISABLED", false),
	}

	if path := os.Getenv("MONITOR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.SweepInterval <= 0 {
		return cfg, errors.New("monitor: sweep interval must be positive")
	}
	if cfg.QueryTimeout <= 0 {
		return cfg, errors.New("monitor: query timeout must be positive")
	}
	if cfg.LivenessHorizon <= 0 {
		return cfg, errors.New("monitor: liveness horizon must be positive")
	}
	return cfg, nil
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
