package nodes

import (
	"context"
	"fmt"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

// DraftReply sends the system prompt, the conversation so far, and the new
// user message to the model and records its first answer.
func DraftReply(
	ctx context.Context,
	in *TurnState,
	gen contractx.Generator,
	systemPrompt string,
	opts contractx.GenOptions,
) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}

	messages := make([]contractx.Turn, 0, len(in.History)+2)
	messages = append(messages, contractx.SystemTurn(systemPrompt))
	messages = append(messages, in.History...)
	messages = append(messages, contractx.UserTurn(in.Message))
	in.Messages = messages

	draft, err := gen.Complete(ctx, in.Messages, opts)
	if err != nil {
		return nil, err
	}

	in.Draft = draft
	return in, nil
}
