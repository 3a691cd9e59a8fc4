// Package config loads the engine and server configuration from a yaml
// file with environment-variable overrides.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/clauselens/clauselens/pkg/errors"
)

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// EngineConfig holds the tunables of the scoring, analytics and
// suggestion pipelines. Defaults match the documented policy values; all
// of them are configurable, not hard law.
type EngineConfig struct {
	RiskThresholdLow    float64       `mapstructure:"risk_threshold_low" yaml:"risk_threshold_low"`
	RiskThresholdMedium float64       `mapstructure:"risk_threshold_medium" yaml:"risk_threshold_medium"`
	RiskThresholdHigh   float64       `mapstructure:"risk_threshold_high" yaml:"risk_threshold_high"`
	MaxAutoTags         int           `mapstructure:"max_auto_tags" yaml:"max_auto_tags"`
	TrendBand           float64       `mapstructure:"trend_band" yaml:"trend_band"`
	TopRiskFactors      int           `mapstructure:"top_risk_factors" yaml:"top_risk_factors"`
	MinConfidence       float64       `mapstructure:"min_confidence" yaml:"min_confidence"`
	MaxSuggestions      int           `mapstructure:"max_suggestions" yaml:"max_suggestions"`
	ProviderTimeout     time.Duration `mapstructure:"provider_timeout" yaml:"provider_timeout"`
}

// Config is the root configuration.
type Config struct {
	LogLevel string       `mapstructure:"log_level" yaml:"log_level"`
	Server   ServerConfig `mapstructure:"server" yaml:"server"`
	Engine   EngineConfig `mapstructure:"engine" yaml:"engine"`
	// RulesFile optionally points at a yaml file with the initial rule
	// snapshot to publish on startup.
	RulesFile string `mapstructure:"rules_file" yaml:"rules_file"`
}

// Load reads the configuration file at path (optional) and applies
// CLAUSELENS_* environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CLAUSELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Newf(errors.KindValidation, "reading config file %s", path).Cause(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("unmarshaling config").Cause(err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("engine.risk_threshold_low", 80.0)
	v.SetDefault("engine.risk_threshold_medium", 60.0)
	v.SetDefault("engine.risk_threshold_high", 40.0)
	v.SetDefault("engine.max_auto_tags", 5)
	v.SetDefault("engine.trend_band", 5.0)
	v.SetDefault("engine.top_risk_factors", 5)
	v.SetDefault("engine.min_confidence", 0.6)
	v.SetDefault("engine.max_suggestions", 5)
	v.SetDefault("engine.provider_timeout", 10*time.Second)
}
