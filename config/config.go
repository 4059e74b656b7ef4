package config

import (
	"time"

	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/llm/foundation"
	"github.com/kbukum/yagpt/logger"
	"github.com/kbukum/yagpt/observability"
	"github.com/kbukum/yagpt/validation"
)

// ServiceName tags logs and telemetry.
const ServiceName = "yagpt"

// Settings is the full application configuration.
type Settings struct {
	Foundation foundation.Config `yaml:"foundation" mapstructure:"foundation"`
	Logging    logger.Config     `yaml:"logging" mapstructure:"logging"`
	Telemetry  TelemetryConfig   `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills in zero-value fields of every section.
func (s *Settings) ApplyDefaults() {
	s.Foundation.ApplyDefaults()
	if s.Logging.ServiceName == "" {
		s.Logging.ServiceName = ServiceName
	}
	s.Logging.ApplyDefaults()
	s.Telemetry.ApplyDefaults()
}

// Validate checks every section and reports the first failure as
// INVALID_CONFIG.
func (s *Settings) Validate() error {
	if err := s.Foundation.Validate(); err != nil {
		return err
	}
	if err := s.Logging.Validate(); err != nil {
		return errors.InvalidConfig("logging", err.Error()).WithCause(err)
	}
	return validation.Validate(&s.Telemetry)
}

// Redacted returns a copy safe to print: credentials are masked.
func (s Settings) Redacted() Settings {
	s.Foundation.APIKey = mask(s.Foundation.APIKey)
	s.Foundation.IAMToken = mask(s.Foundation.IAMToken)
	return s
}

func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "****"
	default:
		return "****" + secret[len(secret)-4:]
	}
}

// TelemetryConfig controls OTLP trace and metric export. Export is off
// unless Enabled is set.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP collector host:port.
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint" validate:"required,hostname_port"`
	Insecure    bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate  float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Environment string  `yaml:"environment" mapstructure:"environment"`
	// MetricInterval is the metric export period.
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval" validate:"gte=0"`
}

// ApplyDefaults fills in the endpoint, environment and export interval.
func (c *TelemetryConfig) ApplyDefaults() {
	def := observability.DefaultMeterConfig(ServiceName)
	if c.Endpoint == "" {
		c.Endpoint = def.Endpoint
	}
	if c.Environment == "" {
		c.Environment = def.Environment
	}
	if c.MetricInterval <= 0 {
		c.MetricInterval = def.Interval
	}
}

// TracerConfig converts the section for observability.InitTracer.
func (c TelemetryConfig) TracerConfig(version string) observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    ServiceName,
		ServiceVersion: version,
		Environment:    c.Environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		SampleRate:     c.SampleRate,
	}
}

// MeterConfig converts the section for observability.InitMeter.
func (c TelemetryConfig) MeterConfig(version string) *observability.MeterConfig {
	return &observability.MeterConfig{
		ServiceName:    ServiceName,
		ServiceVersion: version,
		Environment:    c.Environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		Interval:       c.MetricInterval,
	}
}
