package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subko/internal/cache"
	"github.com/mgpai22/subko/internal/config"
	"github.com/mgpai22/subko/internal/pipeline"
	"github.com/mgpai22/subko/internal/subtitle"
	"github.com/mgpai22/subko/internal/translate"
	"github.com/mgpai22/subko/internal/video"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_or_video_file]",
	Short: "Translate English subtitles into Korean",
	Long: `Translate an English SubRip (.srt) file into Korean.

Cues are sent in batches; index and timing lines are kept from the source
and only dialogue text is replaced. The result is written next to the
input as <name>_kor.srt unless -o is given.

A video file may be given instead; its subtitle stream (--stream) is
extracted with ffmpeg first.

Examples:
  subko translate episode.srt
  subko translate episode.srt --provider anthropic --batch-size 20
  subko translate movie.mkv --stream 1 --concurrency 3 -o movie.ko.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	addTranslateFlags(translateCmd)
}

func addTranslateFlags(cmd *cobra.Command) {
	cmd.Flags().
		StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY/ANTHROPIC_API_KEY/GEMINI_API_KEY env var)")
	cmd.Flags().
		String("provider", "", "Translation provider (openai, anthropic, gemini)")
	cmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	cmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	cmd.Flags().
		Int("batch-size", 10, "Number of subtitle blocks per API request")
	cmd.Flags().
		Int("concurrency", 1, "Number of batches translated in parallel")
	cmd.Flags().
		String("align", "position", "How answers are matched to cues (position, index)")
	cmd.Flags().
		Int("retries", 0, "Extra requests for a batch whose answer is missing blocks")
	cmd.Flags().
		String("cache", "", "Cache responses in this sqlite file")
	cmd.Flags().
		Int("stream", 0, "Subtitle stream to extract when the input is a video")
}

// settings resolved from config and flags
type translateSettings struct {
	Provider   translate.Provider
	APIKey     string
	Model      string
	CachePath  string
	OutputPath string
	Stream     int
	Pipeline   pipeline.Options
}

func runTranslate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Debugw("Loaded config", "path", resolved, "exists", exists)

	settings, err := resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lines, defaultOutput, cleanup, err := loadInput(ctx, cfg, inputPath, settings.Stream)
	if err != nil {
		return err
	}
	defer cleanup()

	outputPath := settings.OutputPath
	if outputPath == "" {
		outputPath = defaultOutput
	}

	logger.Infow("Starting subtitle translation",
		"input", inputPath,
		"output", outputPath,
		"provider", settings.Provider,
		"model", settings.Model,
		"batch_size", settings.Pipeline.BatchSize,
		"concurrency", settings.Pipeline.Concurrency,
	)

	completer, err := translate.Factory(ctx, settings.Provider, settings.APIKey, translate.Options{
		Model:          settings.Model,
		BaseURL:        cfg.BaseURL,
		RequestTimeout: cfg.RequestTimeout(),
	})
	if err != nil {
		return describeError(err, settings.Provider)
	}

	var cached *cache.Completer
	if settings.CachePath != "" {
		store, err := cache.Open(settings.CachePath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		cached = cache.Wrap(store, completer, logger)
		completer = cached
		logger.Debugw("Response cache enabled", "path", settings.CachePath)
	}

	progress := newProgress(os.Stderr, logger)
	opts := settings.Pipeline
	opts.Progress = progress.Update

	track := subtitle.Parse(lines)
	logger.Infow("Parsed subtitle file", "blocks", len(track))

	result, err := pipeline.New(completer, logger).Translate(ctx, track, opts)
	progress.Finish()
	if err != nil {
		if result != nil {
			logger.Warnw("Translation stopped, nothing written",
				"completed_batches", result.Completed,
				"batches", result.Batches,
			)
		}
		return describeError(err, settings.Provider)
	}

	if err := subtitle.WriteFile(outputPath, result.Output); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles translated successfully: %s\n", absOutput)
	fmt.Fprintln(cmd.OutOrStdout(), summaryTable(result, absOutput, cached))
	return nil
}

func resolveSettings(cmd *cobra.Command, cfg *config.Config) (translateSettings, error) {
	flags := cmd.Flags()

	apiKey, _ := flags.GetString("api-key")
	providerStr, _ := flags.GetString("provider")
	model, _ := flags.GetString("model")
	modelOverride, _ := flags.GetBool("model-override")
	cachePath, _ := flags.GetString("cache")
	outputPath, _ := flags.GetString("output")
	stream, _ := flags.GetInt("stream")

	if providerStr == "" {
		providerStr = cfg.Provider
	}
	provider := translate.Provider(strings.ToLower(strings.TrimSpace(providerStr)))
	if !translate.IsProvider(provider) {
		return translateSettings{}, fmt.Errorf(
			"unknown provider %q: use openai, anthropic, or gemini",
			providerStr,
		)
	}

	if apiKey == "" {
		apiKey = cfg.APIKey(provider)
	}
	if apiKey == "" {
		return translateSettings{}, fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			config.EnvKey(provider),
		)
	}

	if model == "" && string(provider) == cfg.Provider {
		model = cfg.Model
	}
	model, err := resolveModel(provider, model, modelOverride)
	if err != nil {
		return translateSettings{}, err
	}

	tr := cfg.Translation
	if flags.Changed("batch-size") {
		tr.BatchSize, _ = flags.GetInt("batch-size")
	}
	if flags.Changed("concurrency") {
		tr.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("align") {
		tr.Align, _ = flags.GetString("align")
	}
	if flags.Changed("retries") {
		tr.Retries, _ = flags.GetInt("retries")
	}

	if tr.BatchSize <= 0 {
		return translateSettings{}, fmt.Errorf("batch-size must be positive, got %d", tr.BatchSize)
	}
	if tr.Concurrency <= 0 {
		return translateSettings{}, fmt.Errorf("concurrency must be positive, got %d", tr.Concurrency)
	}
	if tr.Retries < 0 {
		return translateSettings{}, fmt.Errorf("retries cannot be negative, got %d", tr.Retries)
	}
	align, err := pipeline.ParseAlign(tr.Align)
	if err != nil {
		return translateSettings{}, err
	}

	if cachePath == "" && cfg.Cache.Enabled {
		cachePath = cfg.Cache.Path
	}

	return translateSettings{
		Provider:   provider,
		APIKey:     apiKey,
		Model:      model,
		CachePath:  cachePath,
		OutputPath: outputPath,
		Stream:     stream,
		Pipeline: pipeline.Options{
			Model:           model,
			SystemPrompt:    tr.SystemPrompt,
			UserPrompt:      tr.UserPrompt,
			BatchSize:       tr.BatchSize,
			Concurrency:     tr.Concurrency,
			Align:           align,
			MismatchRetries: tr.Retries,
			Validate:        true,
		},
	}, nil
}

// empty model selects the provider default
func resolveModel(provider translate.Provider, model string, override bool) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return translate.DefaultModel(provider), nil
	}
	if override || translate.ValidModel(provider, model) {
		return model, nil
	}

	ids := make([]string, 0)
	for _, m := range translate.Models(provider) {
		ids = append(ids, m.ID)
	}
	return "", fmt.Errorf(
		"unsupported %s model %q: valid models are %s (use --model-override to bypass)",
		provider,
		model,
		strings.Join(ids, ", "),
	)
}

// loadInput returns the source lines and the default output path. Video
// inputs are extracted into a temporary .srt first.
func loadInput(
	ctx context.Context,
	cfg *config.Config,
	inputPath string,
	stream int,
) ([]string, string, func(), error) {
	noop := func() {}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, "", noop, fmt.Errorf("input file not found: %s", inputPath)
	}

	if !video.IsVideo(inputPath) {
		lines, err := subtitle.ReadLines(inputPath)
		if err != nil {
			return nil, "", noop, describeError(err, "")
		}
		return lines, subtitle.OutputPath(inputPath), noop, nil
	}

	tmpDir, err := os.MkdirTemp("", "subko-extract-*")
	if err != nil {
		return nil, "", noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	extracted := filepath.Join(tmpDir, filepath.Base(video.SubtitlePath(inputPath)))
	if err := extractSubtitle(ctx, cfg, inputPath, extracted, stream); err != nil {
		cleanup()
		return nil, "", noop, err
	}

	lines, err := subtitle.ReadLines(extracted)
	if err != nil {
		cleanup()
		return nil, "", noop, describeError(err, "")
	}
	return lines, subtitle.OutputPath(video.SubtitlePath(inputPath)), cleanup, nil
}

// describeError adds user guidance for the error kinds the CLI can explain.
func describeError(err error, provider translate.Provider) error {
	var authErr *translate.AuthenticationError
	var transportErr *translate.TransportError
	var formatErr *subtitle.UnsupportedFormatError

	switch {
	case errors.As(err, &authErr):
		return fmt.Errorf(
			"authentication failed: check --api-key or %s: %w",
			config.EnvKey(authErr.Provider),
			err,
		)
	case errors.Is(err, translate.ErrMissingAPIKey):
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			config.EnvKey(provider),
		)
	case errors.As(err, &formatErr):
		return fmt.Errorf("cannot translate %s: %w", formatErr.Path, err)
	case errors.As(err, &transportErr):
		return fmt.Errorf("translation request failed, no output written: %w", err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("translation interrupted, no output written: %w", err)
	default:
		return fmt.Errorf("translation failed: %w", err)
	}
}

func summaryTable(result *pipeline.Result, output string, cached *cache.Completer) string {
	tw := newTable("Summary", "Value")
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})

	tw.AppendRows([]table.Row{
		{"Blocks", len(result.Track)},
		{"Batches", result.Batches},
		{"Requests", result.Requests},
		{"Mismatched batches", len(result.Mismatches)},
		{"Untranslated blocks", len(result.Untranslated)},
		{"Unchanged blocks", len(result.Unchanged)},
	})
	if cached != nil {
		hits, misses := cached.Stats()
		tw.AppendRow(table.Row{"Cache hits", fmt.Sprintf("%d/%d", hits, hits+misses)})
	}
	tw.AppendRow(table.Row{"Output", output})

	return tw.Render()
}
