package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/llm/foundation"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "YAGPT"

// envKeys lists every settings key that can be set from the environment.
var envKeys = []string{
	"foundation.folder_id",
	"foundation.api_key",
	"foundation.iam_token",
	"foundation.model",
	"foundation.base_url",
	"foundation.operations_url",
	"foundation.temperature",
	"foundation.max_tokens",
	"foundation.streaming",
	"foundation.reasoning",
	"foundation.timeout",
	"foundation.poll_interval",
	"foundation.poll_deadline",
	"foundation.mode",
	"foundation.verbose",
	"logging.level",
	"logging.format",
	"logging.output",
	"logging.no_color",
	"logging.caller",
	"telemetry.enabled",
	"telemetry.endpoint",
	"telemetry.insecure",
	"telemetry.sample_rate",
	"telemetry.environment",
	"telemetry.metric_interval",
}

// FileSystem abstracts file lookups so tests can control them.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	HomeDir() (string, error)
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (RealFileSystem) HomeDir() (string, error) {
	return os.UserHomeDir()
}

// Resolver finds the config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths when given, otherwise the first
// match in the search paths. Empty means none found.
func (r *Resolver) ResolveFiles(opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(r.configSearchPaths())
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first([]string{".env", filepath.Join("config", ".env")})
	}
	return resolved
}

func (r *Resolver) configSearchPaths() []string {
	paths := []string{
		"yagpt.yml",
		filepath.Join("config", "yagpt.yml"),
	}
	if home, err := r.FileSystem.HomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "yagpt", "config.yml"))
	}
	return paths
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file; must exist when set
	EnvFile    string // explicit .env file; must exist when set
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads, defaults and validates the settings.
func Load(opts ...LoaderOption) (*Settings, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	for _, explicit := range []struct{ field, path string }{
		{"config_file", lc.ConfigFile},
		{"env_file", lc.EnvFile},
	} {
		if explicit.path != "" && !lc.FileSystem.Exists(explicit.path) {
			return nil, errors.InvalidConfig(explicit.field, "file not found: "+explicit.path)
		}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(lc)

	s, err := loadFromResolvedFiles(files, lc.FileSystem)
	if err != nil {
		return nil, err
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadFromResolvedFiles layers file, .env and environment into Settings.
func loadFromResolvedFiles(files ResolvedFiles, fs FileSystem) (*Settings, error) {
	v := newViper()

	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.InvalidConfig("config_file", "read "+files.ConfigFile+": "+err.Error()).WithCause(err)
		}
	}

	// .env values never override variables already in the environment.
	if files.EnvFile != "" {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			return nil, errors.InvalidConfig("env_file", "load "+files.EnvFile+": "+err.Error()).WithCause(err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.InvalidConfig("", "decode settings: "+err.Error()).WithCause(err)
	}
	return &s, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("foundation.temperature", foundation.DefaultTemperature)
	v.SetDefault("telemetry.sample_rate", 1.0)
	return v
}
