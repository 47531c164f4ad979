package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".ensemblestat"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for ensemblestat settings.
const envPrefix = "ENSEMBLESTAT"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Histogram: HistogramConfig{
			BinCount: DefaultHistogramBinCount,
			Bounds:   DefaultHistogramBounds,
			Min:      DefaultHistogramMin,
			Max:      DefaultHistogramMax,
		},
		Percentiles: PercentilesConfig{
			Positions: DefaultPercentilePositions(),
			Style:     DefaultPercentileStyle,
			Method:    DefaultPercentileMethod,
		},
		Output:  OutputConfig{Format: DefaultOutputFormat},
		Logging: LoggingConfig{Level: DefaultLogLevel, JSON: DefaultLogJSON},
		Telemetry: TelemetryConfig{
			OTLPEndpoint:   DefaultOTLPEndpoint,
			OTLPInsecure:   DefaultOTLPInsecure,
			PrometheusAddr: DefaultPrometheusAddr,
		},
	}
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("histogram.bin_count", DefaultHistogramBinCount)
	viperCfg.SetDefault("histogram.bounds", DefaultHistogramBounds)
	viperCfg.SetDefault("histogram.min", DefaultHistogramMin)
	viperCfg.SetDefault("histogram.max", DefaultHistogramMax)

	viperCfg.SetDefault("percentiles.positions", DefaultPercentilePositions())
	viperCfg.SetDefault("percentiles.style", DefaultPercentileStyle)
	viperCfg.SetDefault("percentiles.method", DefaultPercentileMethod)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("telemetry.prometheus_addr", DefaultPrometheusAddr)
}
