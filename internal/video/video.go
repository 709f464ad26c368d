package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var videoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
	".ts":   true,
}

// reports whether path looks like a container ffmpeg can demux subtitles from
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// defines interface for video processing operations
type Processor interface {
	// extracts subtitle stream N of a video into an SRT file
	ExtractSubtitle(
		ctx context.Context,
		videoPath, outputPath string,
		stream int,
	) error
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	ffmpegPath string
}

func NewProcessor(ffmpegPath string) *DefaultProcessor {
	return &DefaultProcessor{ffmpegPath: ffmpegPath}
}

// extracts a subtitle stream, converting it to SubRip
func (p *DefaultProcessor) ExtractSubtitle(
	ctx context.Context,
	videoPath, outputPath string,
	stream int,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if stream < 0 {
		return fmt.Errorf("subtitle stream must be non-negative, got %d", stream)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	err := p.command(videoPath, outputPath, stream).Run()
	if err != nil {
		return fmt.Errorf("ffmpeg subtitle extraction failed: %w", err)
	}
	return nil
}

func (p *DefaultProcessor) command(videoPath, outputPath string, stream int) *ffmpeg.Stream {
	kwargs := ffmpeg.KwArgs{
		"map": fmt.Sprintf("0:s:%d", stream), // Nth subtitle stream
		"c:s": "srt",
	}

	s := ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput()
	if p.ffmpegPath != "" {
		s = s.SetFfmpegPath(p.ffmpegPath)
	}
	return s
}

// returns the default .srt destination next to the video
func SubtitlePath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + ".srt"
}
