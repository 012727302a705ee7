// Package anthropic provides a model.Completer backed by the Anthropic
// Messages API. It is the alternate provider selected with
// COMPLETION_PROVIDER=anthropic.
package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/callmesh/core"
	"github.com/hupe1980/callmesh/model"
)

// DefaultModel is the model id used when none is configured.
const DefaultModel = "claude-3-5-haiku-latest"

// callConnected stands in for the caller when history opens with the
// assistant greeting; the Messages API requires a user turn first.
const callConnected = "(call connected)"

// Options configures the Anthropic adapter.
type Options struct {
	model.Options

	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Model wraps the Anthropic Messages API behind the model.Completer interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Options: model.Options{
			Model:       DefaultModel,
			MaxTokens:   150,
			Temperature: 0.7,
		},
	}
}

// NewModel creates a new Anthropic adapter using the official client with
// retries disabled.
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

	client := anthropic.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// Complete sends the history and joins the text blocks of the reply.
func (m *Model) Complete(ctx context.Context, history []core.Message) model.Result {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(m.opts.Model),
		Messages:    buildMessages(history),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}
	if system := extractSystem(history); len(system) > 0 {
		params.System = system
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return model.Failure(fmt.Errorf("anthropic api error: %w", err))
	}
	if resp == nil || len(resp.Content) == 0 {
		return model.Failure(core.ErrNoChoices)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	text, err := model.CleanText(sb.String())
	if err != nil {
		return model.Failure(err)
	}
	return model.Success(text)
}

// buildMessages converts history into Anthropic messages, skipping system
// entries and opening with a user turn.
func buildMessages(history []core.Message) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, msg := range history {
		switch msg.Role {
		case core.RoleSystem:
			continue
		case core.RoleAssistant:
			if len(messages) == 0 {
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(callConnected)))
			}
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return messages
}

// extractSystem collects system messages into system prompt blocks.
func extractSystem(history []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, msg := range history {
		if msg.Role == core.RoleSystem && msg.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: msg.Content})
		}
	}
	return blocks
}

// Info returns metadata describing this adapter.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "anthropic"}
}
