package translate

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Completer using OpenAI Chat Completions
type OpenAICompleter struct {
	client openai.Client
	model  string
}

func NewOpenAICompleter(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, &AuthenticationError{
			Provider: ProviderOpenAI,
			Err:      ErrMissingAPIKey,
		}
	}

	// one call per batch, no SDK-level retries
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.RequestTimeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.RequestTimeout))
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel(ProviderOpenAI)
	}

	return &OpenAICompleter{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}, nil
}

func (c *OpenAICompleter) Complete(
	ctx context.Context,
	req Request,
) (string, error) {
	completion, err := c.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(SystemMessage(req)),
				openai.UserMessage(UserMessage(req)),
			},
			Model:       modelFor(req, c.model),
			Temperature: openai.Float(Temperature),
		},
	)
	if err != nil {
		return "", openAIError(err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", &TransportError{
			Provider: ProviderOpenAI,
			Err:      errors.New("empty response from OpenAI"),
		}
	}

	return finish(ProviderOpenAI, completion.Choices[0].Message.Content)
}

// lists models, which fails fast on a bad key
func (c *OpenAICompleter) Validate(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx); err != nil {
		return openAIError(err)
	}
	return nil
}

func openAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classify(ProviderOpenAI, apiErr.StatusCode, err)
	}
	return classify(ProviderOpenAI, 0, err)
}
