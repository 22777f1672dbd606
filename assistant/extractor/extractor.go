package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
	"github.com/shoptalk-ai/shoptalk/pkg/metrics"
)

var _ contractx.Extractor = (*Extractor)(nil)

// Extractor asks the model for a small JSON object of catalog filters. The
// contract is deliberately forgiving: whatever goes wrong, the caller gets a
// usable (possibly empty) filter and the turn proceeds without augmentation.
type Extractor struct {
	gen    contractx.Generator
	prompt string
	opts   contractx.GenOptions
}

func New(gen contractx.Generator, systemPrompt string, opts contractx.GenOptions) (*Extractor, error) {
	if gen == nil {
		return nil, fmt.Errorf("%w: generator is required", contractx.ErrValidation)
	}
	systemPrompt = strings.TrimSpace(systemPrompt)
	if systemPrompt == "" {
		return nil, fmt.Errorf("%w: extractor prompt is required", contractx.ErrValidation)
	}
	return &Extractor{gen: gen, prompt: systemPrompt, opts: opts}, nil
}

func (e *Extractor) Extract(ctx context.Context, conversation string) contractx.ProductFilter {
	conversation = strings.TrimSpace(conversation)
	if conversation == "" {
		return contractx.ProductFilter{}
	}

	raw, err := e.gen.Complete(ctx, []contractx.Turn{
		contractx.SystemTurn(e.prompt),
		contractx.UserTurn(conversation),
	}, e.opts)
	if err != nil {
		metrics.ExtractionDrops.Inc()
		log.Warn().Err(err).Msg("filter extraction call failed, continuing without filters")
		return contractx.ProductFilter{}
	}

	filter, err := ParseFilter(raw)
	if err != nil {
		metrics.ExtractionDrops.Inc()
		log.Warn().Err(err).Str("raw", raw).Msg("filter extraction output unparseable, continuing without filters")
		return contractx.ProductFilter{}
	}
	return filter
}

// ParseFilter decodes the model output into a ProductFilter. Unknown keys are
// ignored and null-valued keys decode to absent fields, so only output that is
// not a JSON object at all (or carries a wrong-typed value) is rejected.
func ParseFilter(raw string) (contractx.ProductFilter, error) {
	payload := sliceJSONObject(raw)
	if payload == "" {
		return contractx.ProductFilter{}, fmt.Errorf("no JSON object in output")
	}

	var filter contractx.ProductFilter
	if err := json.Unmarshal([]byte(payload), &filter); err != nil {
		return contractx.ProductFilter{}, fmt.Errorf("decode filter object: %w", err)
	}

	if filter.Category != nil && strings.TrimSpace(*filter.Category) == "" {
		filter.Category = nil
	}
	if filter.Department != nil && strings.TrimSpace(*filter.Department) == "" {
		filter.Department = nil
	}
	if filter.Brand != nil && strings.TrimSpace(*filter.Brand) == "" {
		filter.Brand = nil
	}
	if filter.MaxPrice != nil && *filter.MaxPrice <= 0 {
		filter.MaxPrice = nil
	}

	return filter, nil
}

// sliceJSONObject tolerates code fences and prose around the object by
// cutting from the first '{' to the last '}'.
func sliceJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return ""
	}
	return raw[start : end+1]
}
