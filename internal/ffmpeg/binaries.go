package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// EnvPath overrides binary discovery.
const EnvPath = "SUBKO_FFMPEG_PATH"

var ErrNotFound = errors.New("ffmpeg not found: install it or set " + EnvPath)

// Locate returns the ffmpeg binary to run. The environment wins over the
// configured path, which wins over $PATH.
func Locate(configured string) (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return checkBinary(p)
	}
	if configured != "" {
		return checkBinary(configured)
	}
	found, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", ErrNotFound
	}
	return found, nil
}

func checkBinary(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("ffmpeg binary %s: %w", path, ErrNotFound)
		}
		return "", fmt.Errorf("stat ffmpeg binary: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("ffmpeg path %s is a directory", path)
	}
	return path, nil
}
