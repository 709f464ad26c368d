package subtitle

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// UnsupportedFormatError reports a file that is not an SRT text file.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported subtitle file %s: %s", e.Path, e.Reason)
}

// IsSRT reports whether path carries the .srt extension.
func IsSRT(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".srt")
}

// ReadLines reads an SRT file as text lines. UTF-8 (with or without BOM)
// and BOM-marked UTF-16 are accepted.
func ReadLines(path string) ([]string, error) {
	if !IsSRT(path) {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("extension %q is not .srt", filepath.Ext(path)),
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}

	text, err := DecodeText(raw)
	if err != nil {
		return nil, &UnsupportedFormatError{Path: path, Reason: err.Error()}
	}

	return SplitLines(text), nil
}

// DecodeText converts raw file bytes to a string.
func DecodeText(raw []byte) (string, error) {
	hasUTF16BOM := bytes.HasPrefix(raw, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(raw, []byte{0xFE, 0xFF})
	if !hasUTF16BOM && !utf8.Valid(raw) {
		return "", fmt.Errorf("content is not valid UTF-8 text")
	}

	decoded, _, err := transform.Bytes(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		raw,
	)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	if bytes.IndexByte(decoded, 0) >= 0 {
		return "", fmt.Errorf("content looks binary")
	}

	return string(decoded), nil
}

// SplitLines splits text on newlines, dropping carriage returns.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
