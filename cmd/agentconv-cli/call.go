package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ewangz/agentconv/pkg/adapter"
	"github.com/ewangz/agentconv/pkg/datatypes/claude"
	"github.com/ewangz/agentconv/pkg/datatypes/gemini"
	"github.com/ewangz/agentconv/pkg/datatypes/openai"
	"github.com/ewangz/agentconv/pkg/profile"
	"github.com/ewangz/agentconv/pkg/provider"
	"github.com/ewangz/agentconv/pkg/snapshot"
	"github.com/ewangz/agentconv/pkg/store"
	"github.com/ewangz/agentconv/pkg/utils"
	"github.com/ewangz/agentconv/pkg/utils/delimiter"
)

func newCallCommand() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "call [INPUT]",
		Short: "Convert request payloads and call the Gemini generateContent API",
		Args:  cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			flags := cmd.Flags()
			cobra.CheckErr(viper.BindPFlag(delimiter.ViperKey("debug"), flags.Lookup("debug")))
			cobra.CheckErr(viper.BindPFlag(delimiter.ViperKey("snapshot"), flags.Lookup("snapshot")))
			initViperConfig(configFile)
		},
		RunE: runCall,
	}
	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.agentconv/config.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.StringP("from", "f", FormatClaude, "source format (claude, openai, gemini)")
	flags.String("model", "", "model name for profile matching when the payload carries none")
	flags.StringP("out-dir", "o", "", "directory for result files (default is next to the input)")
	flags.IntP("iterations", "n", 1, "number of calls per payload")
	flags.Duration("sleep", time.Second, "pause between consecutive calls")
	flags.String("function-call-mode", "", "override the profile's function calling mode (auto, any, validated)")
	flags.Int("thinking-budget", 0, "override the profile's thinking budget tokens")
	flags.Bool("disable-schema-repair", false, "skip the named tool schema repairs")
	flags.String("snapshot", "", "snapshot recorder config")
	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	profiles, err := profile.LoadFromViper(viper.GetViper())
	if err != nil {
		return err
	}
	recorder, err := makeSnapshotRecorder(profile.GetSnapshotConfig(viper.GetViper()))
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer recorder.Close()
	flags := cmd.Flags()
	clr := &caller{
		profiles: profiles,
		recorder: recorder,
		provider: provider.NewProvider(nil),
		version:  cmd.Parent().Version,
	}
	clr.from, _ = flags.GetString("from")
	clr.model, _ = flags.GetString("model")
	clr.outDir, _ = flags.GetString("out-dir")
	clr.iterations, _ = flags.GetInt("iterations")
	clr.sleep, _ = flags.GetDuration("sleep")
	clr.mode, _ = flags.GetString("function-call-mode")
	clr.budget, _ = flags.GetInt("thinking-budget")
	if clr.iterations < 1 {
		clr.iterations = 1
	}
	if disable, _ := flags.GetBool("disable-schema-repair"); disable {
		clr.options = append(clr.options, adapter.DisableSchemaRepair())
	}
	input := args[0]
	info, err := os.Stat(input)
	if err != nil {
		return err
	}
	if info.IsDir() {
		// Sequential on purpose: upstream calls are rate-sensitive and the
		// sleep between them is part of the contract.
		summary, err := store.ProcessFolder(ctx, input, 1, clr.callFile)
		if err != nil {
			return err
		}
		slog.Info(fmt.Sprintf("called %d/%d payloads", summary.Succeeded, summary.Processed))
		if len(summary.Failed) > 0 {
			return fmt.Errorf("%d payloads failed", len(summary.Failed))
		}
		return nil
	}
	return clr.callFile(ctx, input)
}

type caller struct {
	profiles   *profile.ProfileManager
	recorder   snapshot.Recorder
	provider   *provider.Provider
	version    string
	from       string
	model      string
	outDir     string
	iterations int
	sleep      time.Duration
	mode       string
	budget     int
	options    []adapter.ConvertRequestOption
}

func (c *caller) callFile(ctx context.Context, inputPath string) error {
	for iteration := 1; iteration <= c.iterations; iteration++ {
		if err := c.callOnce(ctx, inputPath, iteration); err != nil {
			return err
		}
		if c.sleep > 0 && iteration < c.iterations {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.sleep):
			}
		}
	}
	return nil
}

func (c *caller) callOnce(ctx context.Context, inputPath string, iteration int) (err error) {
	snap := &snapshot.Snapshot{
		RequestTime: time.Now(),
		Version:     c.version,
		RequestID:   utils.GenerateID("req"),
	}
	defer func() {
		if err != nil && snap.Error == nil {
			snap.Error = &snapshot.Error{Message: err.Error()}
		}
		snap.FinishTime = time.Now()
		if recordErr := c.recorder.Record(snap); recordErr != nil {
			slog.Warn(fmt.Sprintf("error recording snapshot: %s", recordErr.Error()))
		}
	}()
	var (
		claudeRequest *claude.GenerateMessageRequest
		openaiRequest *openai.ChatCompletionRequest
		geminiRequest *gemini.GenerateContentRequest
		model         = c.model
	)
	switch c.from {
	case FormatClaude:
		if err = store.ReadJSON(inputPath, &claudeRequest); err != nil {
			return err
		}
		snap.ClaudeRequest = claudeRequest
		if model == "" {
			model = claudeRequest.Model
		}
	case FormatOpenAI:
		if err = store.ReadJSON(inputPath, &openaiRequest); err != nil {
			return err
		}
		snap.OpenAIRequest = openaiRequest
		if model == "" {
			model = openaiRequest.Model
		}
	case FormatGemini:
		if err = store.ReadJSON(inputPath, &geminiRequest); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported source format %q", c.from)
	}
	prof, err := c.profiles.Match(model)
	if err != nil {
		return fmt.Errorf("match profile for model %q: %w", model, err)
	}
	prof = c.overrideCallerOptions(prof)
	ctx = profile.WithProfile(ctx, prof)
	snap.Profile = prof.Name
	switch c.from {
	case FormatClaude:
		geminiRequest = adapter.ConvertClaudeRequestToGeminiRequest(ctx, claudeRequest, c.options...)
		snap.Direction = "claude-to-gemini"
	case FormatOpenAI:
		geminiRequest = adapter.ConvertOpenAIRequestToGeminiRequest(ctx, openaiRequest, c.options...)
		snap.Direction = "openai-to-gemini"
	}
	snap.GeminiRequest = geminiRequest
	upstreamModel := model
	if mapped := prof.GetOptions().GetModels()[model]; mapped != "" {
		upstreamModel = mapped
	}
	slog.Info(fmt.Sprintf("calling gemini model %q via profile %q (iteration %d/%d)",
		upstreamModel, prof.Name, iteration, c.iterations))
	result, err := c.provider.GenerateGeminiContent(ctx, upstreamModel, geminiRequest)
	if err != nil {
		return err
	}
	snap.GeminiResponse = result.Response
	snap.FinishReason = result.FinishReason
	if result.Usage != nil {
		snap.Usage = &snapshot.Usage{
			PromptTokens:     int(result.Usage.PromptTokens),
			CompletionTokens: int(result.Usage.CompletionTokens),
			TotalTokens:      int(result.Usage.TotalTokens),
		}
	}
	if !result.OK() {
		snap.Error = &snapshot.Error{Message: result.Error, Type: result.ErrorType, Source: "gemini"}
	}
	suffix := "_result"
	if c.iterations > 1 {
		suffix = fmt.Sprintf("_result_%d", iteration)
	}
	outputPath := store.OutputPath(inputPath, suffix, c.outDir)
	if writeErr := store.WriteJSON(outputPath, result); writeErr != nil {
		return writeErr
	}
	if !result.OK() {
		slog.Error(fmt.Sprintf("generateContent failed (%s): %s", result.ErrorType, result.Error))
		return fmt.Errorf("generateContent failed (%s): %s", result.ErrorType, result.Error)
	}
	slog.Info(fmt.Sprintf("finish reason: %s", result.FinishReason))
	if result.Usage != nil {
		slog.Info(fmt.Sprintf("tokens usage: input=%d, output=%d", result.Usage.PromptTokens, result.Usage.CompletionTokens))
	}
	slog.Info(fmt.Sprintf("result written to %s", outputPath))
	return nil
}

// overrideCallerOptions applies the command-line mode/budget overrides on a
// copy of the matched profile so the shared manager stays untouched.
func (c *caller) overrideCallerOptions(prof *profile.Profile) *profile.Profile {
	if c.mode == "" && c.budget <= 0 {
		return prof
	}
	overridden := *prof
	options := profile.OptionsConfig{}
	if prof.Options != nil {
		options = *prof.Options
	}
	if c.mode != "" {
		options.FunctionCallMode = c.mode
	}
	if c.budget > 0 {
		options.ThinkingBudget = c.budget
	}
	overridden.Options = &options
	return &overridden
}
