package translate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Temperature is kept low so the model stays literal and cue-aligned.
const Temperature = 0.1

// one chat completion: system prompt, user instruction and batch payload
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Payload      string
}

// interface for chat-completion backends
type Completer interface {
	// returns the first choice's content, trimmed
	Complete(ctx context.Context, req Request) (string, error)
	// probes the credential without translating anything
	Validate(ctx context.Context) error
}

// implemented by completers that store answers; the caller reports an
// answer it could not use so it is not served again
type Invalidator interface {
	Invalidate(ctx context.Context, req Request) error
}

// translation service provider
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// client construction options
type Options struct {
	Model          string        // fallback when a Request has no model
	BaseURL        string        // API endpoint override
	RequestTimeout time.Duration // 0 means no per-request limit
}

// creates Completer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Completer, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAICompleter(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicCompleter(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiCompleter(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// SystemMessage is the system role content sent with every batch.
func SystemMessage(req Request) string {
	return req.SystemPrompt + "\n\n"
}

// UserMessage is the user role content: instruction, then the payload.
func UserMessage(req Request) string {
	return req.UserPrompt + "\n\n" + "\n" + req.Payload
}

func modelFor(req Request, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	return fallback
}

func finish(provider Provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &TransportError{
			Provider: provider,
			Err:      fmt.Errorf("no text in %s response", provider),
		}
	}
	return text, nil
}
