package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/subko/internal/config"
	"github.com/mgpai22/subko/internal/logging"
	"github.com/mgpai22/subko/internal/pipeline"
	"github.com/mgpai22/subko/internal/subtitle"
	"github.com/mgpai22/subko/internal/translate"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Chdir(dir)
	logger = logging.NewNop()
	return dir
}

func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "translate"}
	addTranslateFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name     string
		provider translate.Provider
		model    string
		override bool
		want     string
		wantErr  bool
	}{
		{"openai default", translate.ProviderOpenAI, "", false, "gpt-4o", false},
		{"anthropic default", translate.ProviderAnthropic, "", false, "claude-haiku-4-5", false},
		{"gemini default", translate.ProviderGemini, " ", false, "gemini-2.5-flash", false},
		{"listed model", translate.ProviderOpenAI, "gpt-4o-mini", false, "gpt-4o-mini", false},
		{"model of another provider", translate.ProviderOpenAI, "gemini-2.5-pro", false, "", true},
		{"unlisted model", translate.ProviderAnthropic, "claude-2", false, "", true},
		{"unlisted model with override", translate.ProviderAnthropic, "claude-2", true, "claude-2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveModel(tt.provider, tt.model, tt.override)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "--model-override")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSettingsFlagsOverrideConfig(t *testing.T) {
	isolateEnv(t)
	cfg := config.Default()
	cfg.APIKeys.OpenAI = "file-key"
	cfg.Translation.BatchSize = 25
	cfg.Translation.Concurrency = 4

	cmd := newFlagCommand(t, "--batch-size", "5", "--align", "index", "--retries", "2", "-o", "out.srt")
	s, err := resolveSettings(cmd, &cfg)
	require.NoError(t, err)

	assert.Equal(t, translate.ProviderOpenAI, s.Provider)
	assert.Equal(t, "file-key", s.APIKey)
	assert.Equal(t, "gpt-4o", s.Model)
	assert.Equal(t, "out.srt", s.OutputPath)
	assert.Equal(t, 5, s.Pipeline.BatchSize)
	assert.Equal(t, 4, s.Pipeline.Concurrency)
	assert.Equal(t, pipeline.AlignIndex, s.Pipeline.Align)
	assert.Equal(t, 2, s.Pipeline.MismatchRetries)
	assert.True(t, s.Pipeline.Validate)
	assert.Empty(t, s.CachePath)
}

func TestResolveSettingsUsesConfiguredModelAndCache(t *testing.T) {
	isolateEnv(t)
	cfg := config.Default()
	cfg.Provider = "gemini"
	cfg.Model = "gemini-2.5-pro"
	cfg.Cache.Enabled = true
	t.Setenv("GEMINI_API_KEY", "env-key")

	s, err := resolveSettings(newFlagCommand(t), &cfg)
	require.NoError(t, err)
	assert.Equal(t, translate.ProviderGemini, s.Provider)
	assert.Equal(t, "env-key", s.APIKey)
	assert.Equal(t, "gemini-2.5-pro", s.Model)
	assert.Equal(t, cfg.Cache.Path, s.CachePath)

	// switching provider on the command line drops the configured model
	s, err = resolveSettings(newFlagCommand(t, "--provider", "openai", "-k", "flag-key"), &cfg)
	require.NoError(t, err)
	assert.Equal(t, "flag-key", s.APIKey)
	assert.Equal(t, "gpt-4o", s.Model)
}

func TestResolveSettingsRejectsBadInput(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing key", nil, "OPENAI_API_KEY"},
		{"unknown provider", []string{"--provider", "mistral", "-k", "x"}, "unknown provider"},
		{"zero batch size", []string{"-k", "x", "--batch-size", "0"}, "batch-size"},
		{"zero concurrency", []string{"-k", "x", "--concurrency", "0"}, "concurrency"},
		{"negative retries", []string{"-k", "x", "--retries", "-1"}, "retries"},
		{"bad align", []string{"-k", "x", "--align", "fuzzy"}, "alignment"},
		{"bad model", []string{"-k", "x", "--model", "gpt-2"}, "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			_, err := resolveSettings(newFlagCommand(t, tt.args...), &cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDescribeError(t *testing.T) {
	auth := &translate.AuthenticationError{Provider: translate.ProviderAnthropic, Err: errors.New("401")}
	err := describeError(fmt.Errorf("validate: %w", auth), translate.ProviderAnthropic)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	assert.ErrorAs(t, err, &auth)

	format := &subtitle.UnsupportedFormatError{Path: "a.vtt", Reason: "not an .srt file"}
	err = describeError(format, "")
	assert.Contains(t, err.Error(), "a.vtt")

	transport := &translate.TransportError{Provider: translate.ProviderOpenAI, StatusCode: 500, Err: errors.New("boom")}
	err = describeError(transport, translate.ProviderOpenAI)
	assert.Contains(t, err.Error(), "no output written")

	err = describeError(context.Canceled, translate.ProviderOpenAI)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadInputRejectsUnsupportedFiles(t *testing.T) {
	dir := isolateEnv(t)
	cfg := config.Default()

	_, _, _, err := loadInput(context.Background(), &cfg, filepath.Join(dir, "missing.srt"), 0)
	assert.Error(t, err)

	vtt := filepath.Join(dir, "a.vtt")
	require.NoError(t, os.WriteFile(vtt, []byte("WEBVTT\n"), 0o644))
	_, _, _, err = loadInput(context.Background(), &cfg, vtt, 0)
	var formatErr *subtitle.UnsupportedFormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestModelsTableListsEveryModel(t *testing.T) {
	out := modelsTable(translate.Models(""))
	for _, m := range translate.Models("") {
		assert.Contains(t, out, m.ID)
	}
	assert.Contains(t, out, "Provider")
	assert.NotContains(t, out, "PROVIDER")
	assert.Contains(t, out, "╭")
}

func TestSummaryTable(t *testing.T) {
	res := &pipeline.Result{
		Track:        make(subtitle.Track, 12),
		Batches:      2,
		Completed:    2,
		Requests:     3,
		Mismatches:   []pipeline.Mismatch{{Batch: 1}},
		Untranslated: []int{11},
	}
	out := summaryTable(res, "/tmp/a_kor.srt", nil)
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Mismatched batches")
	assert.Contains(t, out, "/tmp/a_kor.srt")
	assert.NotContains(t, out, "Cache hits")
}

const sourceSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:03,000 --> 00:00:04,000\nWorld\n\n"

func newFakeOpenAI(t *testing.T, answer string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var completions atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/models"):
			_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": []any{}})
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			completions.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 1,
				"model":   "gpt-4o",
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": answer},
				}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &completions
}

func TestTranslateCommandWritesKoreanFile(t *testing.T) {
	dir := isolateEnv(t)
	srv, completions := newFakeOpenAI(t,
		"1\n00:00:01,000 --> 00:00:02,000\n안녕하세요\n\n2\n00:00:03,000 --> 00:00:04,000\n세상\n")

	input := filepath.Join(dir, "episode.srt")
	require.NoError(t, os.WriteFile(input, []byte(sourceSRT), 0o644))

	cfgPath := filepath.Join(dir, "subko.toml")
	cfgBody := fmt.Sprintf("base_url = %q\n\n[api_keys]\nopenai = \"test-key\"\n", srv.URL+"/")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgBody), 0o644))

	cachePath := filepath.Join(dir, "cache.db")
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"translate", input, "--config", cfgPath, "--cache", cachePath})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	got, err := os.ReadFile(filepath.Join(dir, "episode_kor.srt"))
	require.NoError(t, err)
	assert.Equal(t,
		"1\n00:00:01,000 --> 00:00:02,000\n안녕하세요\n\n2\n00:00:03,000 --> 00:00:04,000\n세상\n\n",
		string(got),
	)
	assert.EqualValues(t, 1, completions.Load())
	assert.Contains(t, stdout.String(), "translated successfully")
	assert.Contains(t, stdout.String(), "Cache hits")
}
