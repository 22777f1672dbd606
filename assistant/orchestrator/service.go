package orchestrator

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
	nodex "github.com/shoptalk-ai/shoptalk/assistant/nodes"
	"github.com/shoptalk-ai/shoptalk/pkg/metrics"
)

var ErrInvalidMessage = nodex.ErrInvalidMessage

// ApologyReply is the single user-facing message for any absorbed pipeline
// failure. It is deliberately non-technical and invites the user to continue;
// operators learn the cause from logs and counters, the user never does.
const ApologyReply = "I apologize, but I ran into a problem while answering that. How else can I help you?"

type Config struct {
	// SystemPrompt frames every draft and final call.
	SystemPrompt string

	// Generation is used for the draft and the final call. The extraction
	// call carries its own, stricter options inside the Extractor.
	Generation contractx.GenOptions

	// Trigger decides whether a draft asks for external data. Defaults to
	// the fixed phrase scan.
	Trigger contractx.TriggerPredicate
}

// Assistant drives one chat turn: draft, trigger check, optional
// extract/lookup/augment round-trip, final answer. It holds only immutable
// configuration and is safe for concurrent turns.
type Assistant struct {
	gen     contractx.Generator
	ext     contractx.Extractor
	catalog contractx.Catalog

	systemPrompt string
	genOpts      contractx.GenOptions
	trigger      contractx.TriggerPredicate

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
}

func New(
	gen contractx.Generator,
	ext contractx.Extractor,
	catalog contractx.Catalog,
	cfg Config,
) (*Assistant, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if ext == nil {
		return nil, errors.New("extractor is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}

	systemPrompt := strings.TrimSpace(cfg.SystemPrompt)
	if systemPrompt == "" {
		return nil, errors.New("system prompt is required")
	}
	if cfg.Generation.MaxTokens <= 0 {
		return nil, errors.New("generation token budget must be > 0")
	}

	trigger := cfg.Trigger
	if trigger == nil {
		trigger = nodex.DefaultTrigger()
	}

	a := &Assistant{
		gen:          gen,
		ext:          ext,
		catalog:      catalog,
		systemPrompt: systemPrompt,
		genOpts:      cfg.Generation,
		trigger:      trigger,
	}

	graphRunner, err := a.compileConverseGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// Converse handles one user turn and always yields exactly one reply. Only a
// blank message (or malformed history) is surfaced as an error for the caller
// to reject; every downstream failure is absorbed into ApologyReply so the
// conversation keeps going.
func (a *Assistant) Converse(ctx context.Context, message string, history []contractx.Turn) (string, error) {
	out, err := a.graphRunner.Invoke(ctx, nodex.GraphInput{
		Message: message,
		History: history,
	})
	if err != nil {
		if errors.Is(err, nodex.ErrInvalidMessage) || errors.Is(err, contractx.ErrValidation) {
			return "", err
		}

		stage := failureStage(err)
		metrics.StageFailures.WithLabelValues(stage).Inc()
		metrics.TurnsCompleted.WithLabelValues(metrics.OutcomeApology).Inc()
		log.Error().Err(err).Str("stage", stage).Msg("turn failed, replying with apology")
		return ApologyReply, nil
	}

	metrics.TurnsCompleted.WithLabelValues(metrics.OutcomeOK).Inc()
	return out.Reply, nil
}

func failureStage(err error) string {
	switch {
	case errors.Is(err, contractx.ErrLookup):
		return "lookup"
	case errors.Is(err, contractx.ErrGeneration):
		return "generation"
	default:
		return "pipeline"
	}
}
