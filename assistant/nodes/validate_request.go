package nodes

import (
	"errors"
	"fmt"
	"strings"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

var ErrInvalidMessage = errors.New("message is empty")

type GraphInput struct {
	Message string
	History []contractx.Turn
}

type GraphOutput struct {
	Reply string
}

// TurnState is threaded through the pipeline for one user turn and discarded
// when the turn completes.
type TurnState struct {
	Message string
	History []contractx.Turn

	// Messages is the sequence sent to the model: system prompt, prior
	// turns, then the new user turn. Augmentation appends to it.
	Messages []contractx.Turn

	Draft     string
	Filter    contractx.ProductFilter
	Records   []contractx.CatalogRecord
	Augmented bool
	Final     string
}

func ValidateRequest(in GraphInput) (*TurnState, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, ErrInvalidMessage
	}

	for i, turn := range in.History {
		switch turn.Role {
		case contractx.RoleUser, contractx.RoleAssistant, contractx.RoleSystem:
		default:
			return nil, fmt.Errorf("%w: history turn %d has unknown role %q", contractx.ErrValidation, i, turn.Role)
		}
	}

	return &TurnState{
		Message: message,
		History: in.History,
	}, nil
}
