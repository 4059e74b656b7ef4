// Command yagpt sends chat completions to the Yandex foundation models API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/yagpt/config"
	"github.com/kbukum/yagpt/errors"
)

var (
	cfgPath  string
	envPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "yagpt",
	Short:         "Chat completions against YandexGPT foundation models",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "config file (default: ./yagpt.yml, ./config/yagpt.yml, ~/.config/yagpt/config.yml)")
	pf.StringVar(&envPath, "env-file", "", ".env file to load before reading YAGPT_* variables")
	pf.StringVar(&logLevel, "log-level", "", "override logging.level")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// loadSettings reads settings using the global flags.
func loadSettings() (*config.Settings, error) {
	var opts []config.LoaderOption
	if cfgPath != "" {
		opts = append(opts, config.WithConfigFile(cfgPath))
	}
	if envPath != "" {
		opts = append(opts, config.WithEnvFile(envPath))
	}
	s, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		s.Logging.Level = logLevel
		if err := s.Logging.Validate(); err != nil {
			return nil, errors.InvalidConfig("log-level", err.Error())
		}
	}
	return s, nil
}

// exitCode maps failures to process exit codes: 2 for configuration
// problems, 130 for cancellation, 1 otherwise.
func exitCode(err error) int {
	switch {
	case errors.IsInvalidConfig(err), errors.IsMissingCredential(err):
		return 2
	case errors.IsCancelled(err):
		return 130
	default:
		return 1
	}
}
