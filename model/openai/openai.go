// Package openai provides an implementation of model.Completer using any
// OpenAI compatible Chat Completions endpoint. The default base URL targets
// the Hugging Face inference router, which speaks the same protocol.
package openai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/callmesh/core"
	"github.com/hupe1980/callmesh/model"
)

const (
	// DefaultBaseURL is the Hugging Face router chat completions root.
	DefaultBaseURL = "https://router.huggingface.co/v1"
	// DefaultModel is the model id used when none is configured.
	DefaultModel = "Qwen/Qwen2.5-VL-7B-Instruct"
)

// Options configure the OpenAI compatible adapter.
type Options struct {
	model.Options

	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Model wraps the Chat Completions API behind the model.Completer interface.
type Model struct {
	client *openai.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Options: model.Options{
			Model:       DefaultModel,
			MaxTokens:   150,
			Temperature: 0.7,
		},
		BaseURL: DefaultBaseURL,
	}
}

// NewModel creates a new adapter with its own client. SDK retries are
// disabled: every turn makes exactly one attempt.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	client := openai.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// Complete sends the full history and returns the first choice's content.
func (m *Model) Complete(ctx context.Context, history []core.Message) model.Result {
	resp, err := m.client.Chat.Completions.New(ctx, m.buildParams(history))
	if err != nil {
		return model.Failure(fmt.Errorf("openai api error: %w", err))
	}
	if resp == nil || len(resp.Choices) == 0 {
		return model.Failure(core.ErrNoChoices)
	}
	text, err := model.CleanText(resp.Choices[0].Message.Content)
	if err != nil {
		return model.Failure(err)
	}
	return model.Success(text)
}

// buildParams assembles the request body {model, messages, max_tokens, temperature}.
func (m *Model) buildParams(history []core.Message) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages:    buildMessages(history),
		Model:       m.opts.Model,
		MaxTokens:   openai.Int(m.opts.MaxTokens),
		Temperature: openai.Float(m.opts.Temperature),
	}
}

// buildMessages converts the conversation history into chat messages.
func buildMessages(history []core.Message) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}

// Info returns metadata describing this adapter.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}
