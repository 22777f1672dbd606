package llm

import (
	"fmt"
	"strings"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

// Config fixes the generation parameters for the three calls a turn can make.
// Draft and final share one profile (creative prose); extraction uses zero
// temperature and a small budget because only a few short fields are expected.
type Config struct {
	Model string `envconfig:"MODEL" split_words:"true" required:"true"`

	DraftTemperature float32 `envconfig:"DRAFT_TEMPERATURE" split_words:"true" default:"0.7"`
	DraftMaxTokens   int     `envconfig:"DRAFT_MAX_TOKENS" split_words:"true" default:"1000"`

	ExtractTemperature float32 `envconfig:"EXTRACT_TEMPERATURE" split_words:"true" default:"0"`
	ExtractMaxTokens   int     `envconfig:"EXTRACT_MAX_TOKENS" split_words:"true" default:"100"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model is required", contractx.ErrValidation)
	}
	if c.DraftMaxTokens <= 0 {
		return fmt.Errorf("%w: draft max tokens must be > 0", contractx.ErrValidation)
	}
	if c.ExtractMaxTokens <= 0 {
		return fmt.Errorf("%w: extract max tokens must be > 0", contractx.ErrValidation)
	}
	return nil
}

// DraftOptions is used for both the draft and the final call.
func (c Config) DraftOptions() contractx.GenOptions {
	return contractx.GenOptions{
		Temperature: float64(c.DraftTemperature),
		MaxTokens:   c.DraftMaxTokens,
	}
}

func (c Config) ExtractOptions() contractx.GenOptions {
	return contractx.GenOptions{
		Temperature: float64(c.ExtractTemperature),
		MaxTokens:   c.ExtractMaxTokens,
	}
}
