package translate

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Completer using Anthropic Claude
type AnthropicCompleter struct {
	client anthropic.Client
	model  string
}

func NewAnthropicCompleter(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicCompleter, error) {
	if apiKey == "" {
		return nil, &AuthenticationError{
			Provider: ProviderAnthropic,
			Err:      ErrMissingAPIKey,
		}
	}

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
		model = DefaultModel(ProviderAnthropic)
	}

	return &AnthropicCompleter{
		client: anthropic.NewClient(reqOpts...),
		model:  model,
	}, nil
}

func (c *AnthropicCompleter) Complete(
	ctx context.Context,
	req Request,
) (string, error) {
	message, err := c.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     anthropic.Model(modelFor(req, c.model)),
			MaxTokens: maxTokensFor(UserMessage(req)),
			System: []anthropic.TextBlockParam{
				{Text: SystemMessage(req)},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(UserMessage(req)),
				),
			},
			Temperature: anthropic.Float(Temperature),
		},
	)
	if err != nil {
		return "", anthropicError(err)
	}

	if message == nil || len(message.Content) == 0 {
		return "", &TransportError{
			Provider: ProviderAnthropic,
			Err:      errors.New("empty response from Anthropic"),
		}
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return finish(ProviderAnthropic, sb.String())
}

const (
	minOutputTokens = 4096
	maxOutputTokens = 32000
)

// output budget grows with the batch; one token per input rune leaves room
// for the Korean text plus the echoed index and time lines
func maxTokensFor(prompt string) int64 {
	n := int64(utf8.RuneCountInString(prompt))
	return min(max(n, minOutputTokens), maxOutputTokens)
}

func (c *AnthropicCompleter) Validate(ctx context.Context) error {
	_, err := c.client.Models.List(ctx, anthropic.ModelListParams{
		Limit: anthropic.Int(1),
	})
	if err != nil {
		return anthropicError(err)
	}
	return nil
}

func anthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classify(ProviderAnthropic, apiErr.StatusCode, err)
	}
	return classify(ProviderAnthropic, 0, err)
}
