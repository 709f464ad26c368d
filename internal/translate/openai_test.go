package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newOpenAITestServer(
	t *testing.T,
	handler func(w http.ResponseWriter, r *http.Request),
) (*OpenAICompleter, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	completer, err := NewOpenAICompleter(context.Background(), "test-key", Options{
		BaseURL: srv.URL + "/",
		Model:   "gpt-4o-mini",
	})
	require.NoError(t, err)
	return completer, &calls
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
			},
		}},
	})
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    "invalid_request_error",
		},
	})
}

func TestOpenAICompleterSendsTwoMessages(t *testing.T) {
	var got chatRequest
	completer, calls := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "\n  1\n00:00:01,000 --> 00:00:02,000\n안녕\n\n")
	})

	out, err := completer.Complete(context.Background(), Request{
		Model:        "gpt-4o",
		SystemPrompt: "system",
		UserPrompt:   "user",
		Payload:      "payload",
	})
	require.NoError(t, err)

	assert.Equal(t, "1\n00:00:01,000 --> 00:00:02,000\n안녕", out)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, "gpt-4o", got.Model)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "system\n\n", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "user\n\n\npayload", got.Messages[1].Content)
}

func TestOpenAICompleterFallsBackToDefaultModel(t *testing.T) {
	var got chatRequest
	completer, _ := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "ok")
	})

	_, err := completer.Complete(context.Background(), Request{Payload: "x"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", got.Model)
}

func TestOpenAICompleterUnauthorized(t *testing.T) {
	completer, calls := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "Incorrect API key provided")
	})

	_, err := completer.Complete(context.Background(), Request{Payload: "x"})
	require.Error(t, err)
	assert.True(t, IsAuthentication(err))
	assert.EqualValues(t, 1, calls.Load())
}

func TestOpenAICompleterServerErrorIsNotRetried(t *testing.T) {
	completer, calls := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusInternalServerError, "upstream exploded")
	})

	_, err := completer.Complete(context.Background(), Request{Payload: "x"})
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsAuthentication(err))
	assert.EqualValues(t, 1, calls.Load())

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
}

func TestOpenAICompleterEmptyContent(t *testing.T) {
	completer, _ := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "   ")
	})

	_, err := completer.Complete(context.Background(), Request{Payload: "x"})
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestOpenAICompleterValidate(t *testing.T) {
	completer, _ := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models"))
		if r.Header.Get("Authorization") != "Bearer test-key" {
			writeAPIError(w, http.StatusUnauthorized, "bad key")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o","object":"model","created":1,"owned_by":"openai"}]}`))
	})

	assert.NoError(t, completer.Validate(context.Background()))
}

func TestOpenAICompleterValidateRejectsBadKey(t *testing.T) {
	completer, _ := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "bad key")
	})

	err := completer.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthentication(err))
}
