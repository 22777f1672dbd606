package nodes

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

// ExtractFilters derives catalog constraints from the conversation text plus
// the new message. Extraction is best-effort; an empty filter is a legal
// outcome and the pipeline proceeds either way.
func ExtractFilters(ctx context.Context, in *TurnState, ext contractx.Extractor) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}

	in.Filter = ext.Extract(ctx, transcript(in.History, in.Message))
	return in, nil
}

// transcript flattens prior turn contents and the current message into plain
// text in chronological order, with no structural markup.
func transcript(history []contractx.Turn, message string) string {
	parts := make([]string, 0, len(history)+1)
	for _, turn := range history {
		if content := strings.TrimSpace(turn.Content); content != "" {
			parts = append(parts, content)
		}
	}
	parts = append(parts, message)
	return strings.Join(parts, " ")
}
