package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// implements Completer using Google Gemini
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, &AuthenticationError{
			Provider: ProviderGemini,
			Err:      ErrMissingAPIKey,
		}
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	if opts.RequestTimeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.RequestTimeout}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel(ProviderGemini)
	}

	return &GeminiCompleter{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiCompleter) Complete(
	ctx context.Context,
	req Request,
) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(UserMessage(req), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(
			SystemMessage(req),
			genai.RoleUser,
		),
		Temperature: genai.Ptr[float32](Temperature),
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		modelFor(req, c.model),
		contents,
		config,
	)
	if err != nil {
		return "", geminiError(err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return "", &TransportError{
			Provider: ProviderGemini,
			Err:      errors.New("empty response from Gemini"),
		}
	}

	var sb strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		if sb.Len() > 0 {
			break
		}
	}

	return finish(ProviderGemini, sb.String())
}

func (c *GeminiCompleter) Validate(ctx context.Context) error {
	_, err := c.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1})
	if err != nil {
		return geminiError(err)
	}
	return nil
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		// the Gemini API answers a bad key with 400 INVALID_ARGUMENT
		if apiErr.Code == http.StatusBadRequest &&
			strings.Contains(apiErr.Message, "API key") {
			return &AuthenticationError{Provider: ProviderGemini, Err: err}
		}
		return classify(ProviderGemini, apiErr.Code, err)
	}
	return classify(ProviderGemini, 0, err)
}
