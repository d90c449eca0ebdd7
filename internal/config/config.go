package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"

	"gopower/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Defaults   DefaultsConfig
	Simulation SimulationConfig
	Plot       PlotConfig
	Server     ServerConfig
}

// DefaultsConfig holds the error rates used when a caller omits them
type DefaultsConfig struct {
	Alpha float64 `validate:"gt=0,lt=1"`
	Beta  float64 `validate:"gt=0,lt=1"`
}

// SimulationConfig holds Monte Carlo settings
type SimulationConfig struct {
	Trials  int `validate:"min=1,max=1000000"`
	Workers int `validate:"min=1,max=256"`
	Seed    uint64
}

// PlotConfig holds density plot output settings
type PlotConfig struct {
	Dir      string  `validate:"required"`
	WidthCm  float64 `validate:"gt=0"`
	HeightCm float64 `validate:"gt=0"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Defaults:   *loadDefaultsConfig(),
		Simulation: *loadSimulationConfig(),
		Plot:       *loadPlotConfig(),
		Server:     *loadServerConfig(),
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Defaults:   DefaultsConfig{Alpha: 0.05, Beta: 0.20},
		Simulation: SimulationConfig{Trials: 2000, Workers: 4, Seed: 42},
		Plot:       PlotConfig{Dir: "./out", WidthCm: 16, HeightCm: 10},
		Server:     ServerConfig{Port: "8080", GinMode: "release"},
	}
}

// Validate checks struct constraints on an already-populated config
func Validate(config *Config) error {
	if config == nil {
		return errors.ConfigInvalid("config is nil")
	}
	if err := validate.Struct(config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

func loadDefaultsConfig() *DefaultsConfig {
	return &DefaultsConfig{
		Alpha: getEnvFloatOrDefault("POWER_ALPHA", 0.05),
		Beta:  getEnvFloatOrDefault("POWER_BETA", 0.20),
	}
}

func loadSimulationConfig() *SimulationConfig {
	return &SimulationConfig{
		Trials:  getEnvIntOrDefault("SIM_TRIALS", 2000),
		Workers: getEnvIntOrDefault("SIM_WORKERS", 4),
		Seed:    getEnvUint64OrDefault("SIM_SEED", 42),
	}
}

func loadPlotConfig() *PlotConfig {
	return &PlotConfig{
		Dir:      getEnvOrDefault("PLOT_DIR", "./out"),
		WidthCm:  getEnvFloatOrDefault("PLOT_WIDTH_CM", 16),
		HeightCm: getEnvFloatOrDefault("PLOT_HEIGHT_CM", 10),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint64OrDefault(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
