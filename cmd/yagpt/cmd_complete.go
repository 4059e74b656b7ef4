package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/yagpt/config"
	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/llm"
	"github.com/kbukum/yagpt/llm/foundation"
	"github.com/kbukum/yagpt/logger"
)

type completeFlags struct {
	system       string
	model        string
	mode         string
	stop         []string
	temperature  float64
	maxTokens    int
	reasoning    bool
	pollInterval time.Duration
	deadline     time.Duration
	jsonOut      bool
	verbose      bool
}

var completeOpts completeFlags

func init() {
	rootCmd.AddCommand(completeCmd)

	f := completeCmd.Flags()
	f.StringVarP(&completeOpts.system, "system", "s", "", "system instruction")
	f.StringVar(&completeOpts.model, "model", "", "model name (yandexgpt-lite, yandexgpt)")
	f.StringVar(&completeOpts.mode, "mode", "", "transport: auto, sync or async")
	f.StringSliceVar(&completeOpts.stop, "stop", nil, "stop sequence (repeatable)")
	f.Float64Var(&completeOpts.temperature, "temperature", foundation.DefaultTemperature, "sampling temperature in [0, 1]")
	f.IntVar(&completeOpts.maxTokens, "max-tokens", 0, "maximum completion tokens")
	f.BoolVar(&completeOpts.reasoning, "reasoning", false, "enable hidden reasoning")
	f.DurationVar(&completeOpts.pollInterval, "poll-interval", 0, "wait between operation polls")
	f.DurationVar(&completeOpts.deadline, "deadline", 0, "bound on a whole async completion")
	f.BoolVar(&completeOpts.jsonOut, "json", false, "print the full result as JSON")
	f.BoolVarP(&completeOpts.verbose, "verbose", "v", false, "log request payloads")
}

var completeCmd = &cobra.Command{
	Use:   "complete [prompt...]",
	Short: "Send a prompt and print the completion",
	Long: `Send a prompt and print the completion.

The prompt is taken from the arguments, or read from stdin when no
arguments are given or the only argument is "-".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := readPrompt(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		settings, err := loadSettings()
		if err != nil {
			return err
		}
		if err := completeOpts.apply(cmd, &settings.Foundation); err != nil {
			return err
		}
		return runComplete(cmd.Context(), cmd.OutOrStdout(), settings, completeOpts, prompt)
	},
}

// apply copies explicitly set flags over the loaded configuration.
func (o completeFlags) apply(cmd *cobra.Command, cfg *foundation.Config) error {
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = o.model
	}
	if flags.Changed("mode") {
		cfg.Mode = o.mode
	}
	if flags.Changed("temperature") {
		cfg.Temperature = foundation.Float64(o.temperature)
	}
	if flags.Changed("max-tokens") {
		cfg.MaxTokens = foundation.Int(o.maxTokens)
	}
	if flags.Changed("reasoning") {
		cfg.Reasoning = o.reasoning
	}
	if flags.Changed("poll-interval") {
		cfg.PollInterval = o.pollInterval
	}
	if flags.Changed("deadline") {
		cfg.PollDeadline = o.deadline
	}
	if o.verbose {
		cfg.Verbose = true
	}
	return cfg.Validate()
}

func readPrompt(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.InvalidConfig("prompt", "prompt is empty")
	}
	return prompt, nil
}

func runComplete(ctx context.Context, out io.Writer, settings *config.Settings, o completeFlags, prompt string) error {
	log := logger.New(&settings.Logging, config.ServiceName)
	logger.SetGlobalLogger(log)

	metrics, shutdown, err := setupTelemetry(ctx, settings.Telemetry, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("telemetry shutdown failed", logger.ErrorFields("telemetry_shutdown", err))
		}
	}()

	client, err := foundation.New(settings.Foundation,
		foundation.WithLogger(log.WithComponent("foundation")),
		foundation.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	defer closeClient(client, log)

	model := llm.Chain(client,
		llm.WithLogging(log.WithComponent("llm")),
		llm.WithTracing(),
		llm.WithMetrics(metrics),
	)

	req := llm.CompletionRequest{Stop: o.stop}
	if o.system != "" {
		req.Messages = append(req.Messages, llm.System(o.system))
	}
	req.Messages = append(req.Messages, llm.User(prompt))

	res, err := model.Generate(ctx, req)
	if err != nil {
		return err
	}
	if o.jsonOut {
		return writeJSON(out, newResultView(model, res))
	}
	_, err = fmt.Fprintln(out, res.Text())
	return err
}

type generationView struct {
	Role         llm.Role           `json:"role"`
	Text         string             `json:"text"`
	ToolCalls    []llm.ToolCall     `json:"tool_calls,omitempty"`
	FinishStatus string             `json:"finish_status,omitempty"`
	Usage        *llm.UsageMetadata `json:"usage,omitempty"`
}

type resultView struct {
	Model        string           `json:"model"`
	Mode         string           `json:"mode"`
	ModelVersion string           `json:"model_version,omitempty"`
	Text         string           `json:"text"`
	Generations  []generationView `json:"generations"`
}

func newResultView(m llm.Model, res *llm.CompletionResult) resultView {
	v := resultView{
		Model:        m.Name(),
		ModelVersion: res.ModelVersion,
		Text:         res.Text(),
		Generations:  make([]generationView, 0, len(res.Generations)),
	}
	if mr, ok := m.(llm.ModeReporter); ok {
		v.Mode = mr.Mode()
	}
	for _, g := range res.Generations {
		gv := generationView{
			Role:         g.Message.Role(),
			Text:         llm.Text(g.Message),
			FinishStatus: g.Info.FinishStatus,
			Usage:        g.Usage,
		}
		if am, ok := g.Message.(llm.AssistantMessage); ok {
			gv.ToolCalls = am.ToolCalls
		}
		v.Generations = append(v.Generations, gv)
	}
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type closer interface {
	Close(ctx context.Context) error
}

// closeClient closes c with a bounded context and logs a failure.
func closeClient(c closer, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Close(ctx); err != nil {
		log.Warn("client close failed", logger.ErrorFields("client_close", err))
	}
}
