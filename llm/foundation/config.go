package foundation

import (
	"fmt"
	"time"

	"github.com/kbukum/yagpt/validation"
)

// Models served by the foundation models API.
const (
	ModelLite = "yandexgpt-lite"
	ModelPro  = "yandexgpt"
)

// Service endpoints and defaults.
const (
	DefaultBaseURL       = "https://llm.api.cloud.yandex.net/foundationModels/v1"
	DefaultOperationsURL = "https://operation.api.cloud.yandex.net/operations"
	DefaultTimeout       = 120 * time.Second
	DefaultPollInterval  = time.Second
	// DefaultTemperature is applied by the config loader and CLI. The zero
	// Config leaves temperature unset so the service picks its own.
	DefaultTemperature = 0.7

	// ReasoningModeHidden enables reasoning without returning the reasoning text.
	ReasoningModeHidden = "ENABLED_HIDDEN"
)

// Transport modes.
const (
	// ModeAuto uses async when an IAM token is configured, sync otherwise.
	ModeAuto  = "auto"
	ModeSync  = "sync"
	ModeAsync = "async"
)

// Config holds everything needed to talk to the completion API. It is
// read-only once passed to New.
type Config struct {
	FolderID string `yaml:"folder_id" mapstructure:"folder_id" validate:"required"`
	// APIKey takes precedence over IAMToken for the Authorization header.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// IAMToken is required for asynchronous completion and operation polling.
	IAMToken string `yaml:"iam_token" mapstructure:"iam_token"`
	Model    string `yaml:"model" mapstructure:"model" validate:"required"`

	BaseURL       string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	OperationsURL string `yaml:"operations_url" mapstructure:"operations_url" validate:"required,url"`

	// Temperature and MaxTokens are sent as JSON null when nil.
	Temperature *float64 `yaml:"temperature" mapstructure:"temperature" validate:"omitempty,gte=0,lte=1"`
	MaxTokens   *int     `yaml:"max_tokens" mapstructure:"max_tokens" validate:"omitempty,gt=0"`
	Streaming   bool     `yaml:"streaming" mapstructure:"streaming"`
	Reasoning   bool     `yaml:"reasoning" mapstructure:"reasoning"`

	// Timeout bounds a single HTTP request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// PollInterval is the wait between operation polls.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval" validate:"gte=0"`
	// PollDeadline bounds a whole asynchronous call. Zero means no deadline.
	PollDeadline time.Duration `yaml:"poll_deadline" mapstructure:"poll_deadline" validate:"gte=0"`

	Mode string `yaml:"mode" mapstructure:"mode" validate:"oneof=auto sync async"`
	// Verbose logs every request payload at info level.
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = ModelLite
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.OperationsURL == "" {
		c.OperationsURL = DefaultOperationsURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Mode == "" {
		c.Mode = ModeAuto
	}
}

// Validate checks the configuration. Credentials are not checked here;
// a missing credential is reported when a call is made.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// ModelURI returns the model reference sent in every payload.
func (c *Config) ModelURI() string {
	return fmt.Sprintf("gpt://%s/%s", c.FolderID, c.Model)
}

// ResolvedMode returns the transport Generate will use: ModeSync or ModeAsync.
func (c *Config) ResolvedMode() string {
	switch c.Mode {
	case ModeSync, ModeAsync:
		return c.Mode
	}
	if c.IAMToken != "" {
		return ModeAsync
	}
	return ModeSync
}

// Params returns the parameters that identify this model configuration.
func (c *Config) Params() map[string]any {
	params := map[string]any{
		"model":       c.Model,
		"streaming":   c.Streaming,
		"reasoning":   c.Reasoning,
		"temperature": nil,
		"max_tokens":  nil,
	}
	if c.Temperature != nil {
		params["temperature"] = *c.Temperature
	}
	if c.MaxTokens != nil {
		params["max_tokens"] = *c.MaxTokens
	}
	return params
}

// Float64 returns a pointer to v, for Config.Temperature.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v, for Config.MaxTokens.
func Int(v int) *int { return &v }
