package nodes

import (
	"context"
	"fmt"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

// GenerateFinal issues the second generation call over the augmented context.
// When augmentation was skipped the draft already stands as the final answer
// and no call is made.
func GenerateFinal(
	ctx context.Context,
	in *TurnState,
	gen contractx.Generator,
	opts contractx.GenOptions,
) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}

	if !in.Augmented {
		return in, nil
	}

	final, err := gen.Complete(ctx, in.Messages, opts)
	if err != nil {
		return nil, err
	}

	in.Final = final
	return in, nil
}
