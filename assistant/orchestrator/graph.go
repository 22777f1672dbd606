package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/shoptalk-ai/shoptalk/assistant/nodes"
)

// compileConverseGraph wires one turn's state machine:
//
//	validate_request -> draft_reply -> (needs lookup?)
//	    no  -> reply_with_draft
//	    yes -> extract_filters -> lookup_catalog -> augment_context
//	           -> generate_final -> finalize_reply
func (a *Assistant) compileConverseGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.TurnState, error) {
			return nodex.ValidateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("draft_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.DraftReply(ctx, in, a.gen, a.systemPrompt, a.genOpts)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node draft_reply: %w", err)
	}

	if err := graph.AddLambdaNode("reply_with_draft",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (nodex.GraphOutput, error) {
			return nodex.ReplyWithDraft(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node reply_with_draft: %w", err)
	}

	if err := graph.AddLambdaNode("extract_filters",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.ExtractFilters(ctx, in, a.ext)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_filters: %w", err)
	}

	if err := graph.AddLambdaNode("lookup_catalog",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.LookupCatalog(ctx, in, a.catalog)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node lookup_catalog: %w", err)
	}

	if err := graph.AddLambdaNode("augment_context",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.AugmentContext(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node augment_context: %w", err)
	}

	if err := graph.AddLambdaNode("generate_final",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.GenerateFinal(ctx, in, a.gen, a.genOpts)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_final: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	if err := graph.AddEdge(compose.START, "validate_request"); err != nil {
		return nil, fmt.Errorf("add edge start->validate_request: %w", err)
	}
	if err := graph.AddEdge("validate_request", "draft_reply"); err != nil {
		return nil, fmt.Errorf("add edge validate_request->draft_reply: %w", err)
	}

	if err := graph.AddBranch("draft_reply", compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.TurnState) (string, error) {
			if in != nil && a.trigger(in.Draft) {
				return "extract_filters", nil
			}
			return "reply_with_draft", nil
		},
		map[string]bool{
			"extract_filters":  true,
			"reply_with_draft": true,
		},
	)); err != nil {
		return nil, fmt.Errorf("add branch draft_reply: %w", err)
	}

	edges := [][2]string{
		{"extract_filters", "lookup_catalog"},
		{"lookup_catalog", "augment_context"},
		{"augment_context", "generate_final"},
		{"generate_final", "finalize_reply"},
		{"finalize_reply", compose.END},
		{"reply_with_draft", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("assistant.converse"))
	if err != nil {
		return nil, fmt.Errorf("compile converse graph: %w", err)
	}
	return runner, nil
}
