package nodes

import (
	"fmt"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

// ReplyWithDraft terminates the no-lookup path: the draft is the answer,
// byte-for-byte.
func ReplyWithDraft(in *TurnState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}
	if in.Draft == "" {
		return GraphOutput{}, fmt.Errorf("%w: model returned an empty draft", contractx.ErrGeneration)
	}
	return GraphOutput{Reply: in.Draft}, nil
}

// FinalizeReply terminates the lookup path.
func FinalizeReply(in *TurnState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}
	if in.Final == "" {
		return GraphOutput{}, fmt.Errorf("%w: model returned an empty final reply", contractx.ErrGeneration)
	}
	return GraphOutput{Reply: in.Final}, nil
}
