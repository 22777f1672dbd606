package llm

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

var _ contractx.Generator = (*ChatGenerator)(nil)

// ChatGenerator runs chat completions against an OpenAI-compatible endpoint.
// The client carries the request timeout; the model name is fixed at
// construction so concurrent turns share nothing mutable.
type ChatGenerator struct {
	client *openaisdk.Client
	model  string
}

func NewChatGenerator(client *openaisdk.Client, model string) (*ChatGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: llm client is required", contractx.ErrValidation)
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("%w: model is required", contractx.ErrValidation)
	}
	return &ChatGenerator{client: client, model: model}, nil
}

func (g *ChatGenerator) Complete(ctx context.Context, turns []contractx.Turn, opts contractx.GenOptions) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("%w: no turns to complete", contractx.ErrValidation)
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case contractx.RoleSystem:
			messages = append(messages, openaisdk.SystemMessage(t.Content))
		case contractx.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(t.Content))
		case contractx.RoleUser:
			messages = append(messages, openaisdk.UserMessage(t.Content))
		default:
			return "", fmt.Errorf("%w: unknown turn role %q", contractx.ErrValidation, t.Role)
		}
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(g.model),
		Messages:    messages,
		Temperature: openaisdk.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(opts.MaxTokens))
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrGeneration, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", contractx.ErrGeneration)
	}

	return completion.Choices[0].Message.Content, nil
}
