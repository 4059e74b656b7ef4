package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kbukum/yagpt/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd)
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "print the full settings as JSON")
}

var configShowJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		redacted := s.Redacted()
		if configShowJSON {
			return writeJSON(cmd.OutOrStdout(), redacted)
		}
		for _, line := range settingsLines(redacted) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config and .env files that would be loaded",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := &config.Resolver{FileSystem: config.RealFileSystem{}}
		files := r.ResolveFiles(config.LoaderConfig{ConfigFile: cfgPath, EnvFile: envPath})
		fmt.Fprintf(cmd.OutOrStdout(), "config = %s\nenv = %s\n", orNone(files.ConfigFile), orNone(files.EnvFile))
		return nil
	},
}

// settingsLines renders the settings as sorted "key = value" lines.
func settingsLines(s config.Settings) []string {
	f := s.Foundation
	values := map[string]any{
		"foundation.folder_id":      f.FolderID,
		"foundation.api_key":        f.APIKey,
		"foundation.iam_token":      f.IAMToken,
		"foundation.model_uri":      f.ModelURI(),
		"foundation.base_url":       f.BaseURL,
		"foundation.operations_url": f.OperationsURL,
		"foundation.mode":           f.ResolvedMode(),
		"foundation.timeout":        f.Timeout,
		"foundation.poll_interval":  f.PollInterval,
		"foundation.poll_deadline":  f.PollDeadline,
		"foundation.verbose":        f.Verbose,
		"logging.level":             s.Logging.Level,
		"logging.format":            s.Logging.Format,
		"telemetry.enabled":         s.Telemetry.Enabled,
		"telemetry.endpoint":        s.Telemetry.Endpoint,
	}
	for k, v := range f.Params() {
		values["foundation."+k] = v
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		v := values[k]
		if v == nil {
			v = "<unset>"
		}
		lines[i] = fmt.Sprintf("%s = %v", k, v)
	}
	return lines
}

func orNone(path string) string {
	if path == "" {
		return "<none>"
	}
	return path
}
