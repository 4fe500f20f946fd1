package main

import (
	"context"
	"errors"
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
	"github.com/ewangz/agentconv/pkg/snapshot"
	"github.com/ewangz/agentconv/pkg/store"
	"github.com/ewangz/agentconv/pkg/utils"
	"github.com/ewangz/agentconv/pkg/utils/delimiter"
)

const (
	FormatClaude = "claude"
	FormatOpenAI = "openai"
	FormatGemini = "gemini"
)

func newConvertCommand() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "convert [INPUT]",
		Short: "Convert a request payload file or folder between chat formats",
		Args:  cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			flags := cmd.Flags()
			cobra.CheckErr(viper.BindPFlag(delimiter.ViperKey("debug"), flags.Lookup("debug")))
			cobra.CheckErr(viper.BindPFlag(delimiter.ViperKey("snapshot"), flags.Lookup("snapshot")))
			initViperConfig(configFile)
		},
		RunE: runConvert,
	}
	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.agentconv/config.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.StringP("from", "f", FormatClaude, "source format (claude, openai, gemini)")
	flags.StringP("to", "t", "", "target format (defaults to the matched profile's target)")
	flags.String("model", "", "model name for profile matching when the payload carries none")
	flags.StringP("out-dir", "o", "", "directory for converted payloads (default is next to the input)")
	flags.String("suffix", "", "output file name suffix (default is _<target>)")
	flags.IntP("workers", "w", 4, "concurrent conversions when the input is a folder")
	flags.Bool("disable-schema-repair", false, "skip the named tool schema repairs")
	flags.String("snapshot", "", "snapshot recorder config")
	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	profiles, err := profile.LoadFromViper(viper.GetViper())
	if err != nil && !errors.Is(err, profile.ErrNoProfilesDefined) {
		return err
	}
	recorder, err := makeSnapshotRecorder(profile.GetSnapshotConfig(viper.GetViper()))
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer recorder.Close()
	flags := cmd.Flags()
	conv := &converter{
		profiles: profiles,
		recorder: recorder,
		version:  cmd.Parent().Version,
	}
	conv.from, _ = flags.GetString("from")
	conv.to, _ = flags.GetString("to")
	conv.model, _ = flags.GetString("model")
	conv.outDir, _ = flags.GetString("out-dir")
	conv.suffix, _ = flags.GetString("suffix")
	if disable, _ := flags.GetBool("disable-schema-repair"); disable {
		conv.options = append(conv.options, adapter.DisableSchemaRepair())
	}
	input := args[0]
	info, err := os.Stat(input)
	if err != nil {
		return err
	}
	if info.IsDir() {
		workers, _ := flags.GetInt("workers")
		summary, err := store.ProcessFolder(ctx, input, workers, conv.convertFile)
		if err != nil {
			return err
		}
		slog.Info(fmt.Sprintf("converted %d/%d payloads", summary.Succeeded, summary.Processed))
		if len(summary.Failed) > 0 {
			return fmt.Errorf("%d payloads failed to convert", len(summary.Failed))
		}
		return nil
	}
	return conv.convertFile(ctx, input)
}

type converter struct {
	profiles *profile.ProfileManager
	recorder snapshot.Recorder
	version  string
	from     string
	to       string
	model    string
	outDir   string
	suffix   string
	options  []adapter.ConvertRequestOption
}

func (c *converter) convertFile(ctx context.Context, inputPath string) (err error) {
	snap := &snapshot.Snapshot{
		RequestTime: time.Now(),
		Version:     c.version,
		RequestID:   utils.GenerateID("req"),
	}
	defer func() {
		if err != nil {
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
		snap.GeminiRequest = geminiRequest
	default:
		return fmt.Errorf("unsupported source format %q", c.from)
	}
	to := c.to
	if c.profiles != nil {
		if prof, matchErr := c.profiles.Match(model); matchErr == nil {
			ctx = profile.WithProfile(ctx, prof)
			snap.Profile = prof.Name
			if to == "" {
				to = prof.GetTarget()
			}
		}
	}
	if to == "" {
		return fmt.Errorf("no target format for model %q: set --to or define a matching profile", model)
	}
	snap.Direction = c.from + "-to-" + to
	var converted any
	switch {
	case c.from == FormatClaude && to == FormatOpenAI:
		dst := adapter.ConvertClaudeRequestToOpenAIRequest(ctx, claudeRequest, c.options...)
		snap.OpenAIRequest = dst
		converted = dst
	case c.from == FormatClaude && to == FormatGemini:
		dst := adapter.ConvertClaudeRequestToGeminiRequest(ctx, claudeRequest, c.options...)
		snap.GeminiRequest = dst
		converted = dst
	case c.from == FormatOpenAI && to == FormatGemini:
		dst := adapter.ConvertOpenAIRequestToGeminiRequest(ctx, openaiRequest, c.options...)
		snap.GeminiRequest = dst
		converted = dst
	case c.from == FormatGemini && to == FormatOpenAI:
		dst := adapter.ConvertGeminiRequestToOpenAIRequest(ctx, geminiRequest, c.options...)
		snap.OpenAIRequest = dst
		converted = dst
	default:
		return fmt.Errorf("unsupported conversion direction %q", snap.Direction)
	}
	slog.Debug(fmt.Sprintf(">>>>>>>>>>>>>>>>> [%s] %s payload >>>>>>>>>>>>>>>>>", snap.RequestID, snap.Direction) + "\n" + utils.JSONEncodeString(converted))
	slog.Debug(fmt.Sprintf("<<<<<<<<<<<<<<<<< [%s] %s payload <<<<<<<<<<<<<<<<<", snap.RequestID, snap.Direction))
	suffix := c.suffix
	if suffix == "" {
		suffix = "_" + to
	}
	outputPath := store.OutputPath(inputPath, suffix, c.outDir)
	if err = store.WriteJSON(outputPath, converted); err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("converted %s (%s) -> %s", inputPath, snap.Direction, outputPath))
	return nil
}
