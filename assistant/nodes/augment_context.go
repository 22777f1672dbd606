package nodes

import (
	"fmt"
	"strings"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

// AugmentContext folds retrieved records back into the model's context: the
// draft reply is appended as an assistant turn, followed by a synthetic system
// note listing the products. When the lookup came back empty the draft stands
// as the final answer and no second generation happens; an empty result must
// never be presented to the model as new information.
func AugmentContext(in *TurnState) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}

	if len(in.Records) == 0 {
		in.Final = in.Draft
		in.Augmented = false
		return in, nil
	}

	in.Messages = append(in.Messages,
		contractx.AssistantTurn(in.Draft),
		contractx.SystemTurn("Found these products:\n"+RenderRecords(in.Records)),
	)
	in.Augmented = true
	return in, nil
}

// RenderRecords formats each record as a one-line "- name (brand): $price"
// summary, price to two decimal places.
func RenderRecords(records []contractx.CatalogRecord) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, "- "+r.Line())
	}
	return strings.Join(lines, "\n")
}
