package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subko/internal/config"
	"github.com/mgpai22/subko/internal/ffmpeg"
	"github.com/mgpai22/subko/internal/video"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract a subtitle stream from a video as SRT",
	Long: `Extract an embedded subtitle stream from a video file and save it as
a SubRip (.srt) file, ready for translation.

Examples:
  subko extract movie.mkv
  subko extract movie.mkv --stream 1 -o movie.en.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		Int("stream", 0, "Subtitle stream number within the video (0 = first)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	stream, _ := cmd.Flags().GetInt("stream")
	outputPath, _ := cmd.Flags().GetString("output")

	if !video.IsVideo(videoPath) {
		return fmt.Errorf("unsupported video format %q", filepath.Ext(videoPath))
	}
	if outputPath == "" {
		outputPath = video.SubtitlePath(videoPath)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := extractSubtitle(ctx, cfg, videoPath, outputPath, stream); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles extracted successfully: %s\n", absOutput)
	return nil
}

func extractSubtitle(
	ctx context.Context,
	cfg *config.Config,
	videoPath, outputPath string,
	stream int,
) error {
	ffmpegPath, err := ffmpeg.Locate(cfg.FFmpegPath)
	if err != nil {
		return err
	}

	logger.Infow("Extracting subtitles",
		"video", videoPath,
		"output", outputPath,
		"stream", stream,
	)

	processor := video.NewProcessor(ffmpegPath)
	if err := processor.ExtractSubtitle(ctx, videoPath, outputPath, stream); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	return nil
}
