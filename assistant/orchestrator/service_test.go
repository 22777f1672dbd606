package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

type generatorCall struct {
	turns []contractx.Turn
	opts  contractx.GenOptions
}

type fakeGenerator struct {
	replies []string
	err     error
	calls   []generatorCall
}

func (f *fakeGenerator) Complete(ctx context.Context, turns []contractx.Turn, opts contractx.GenOptions) (string, error) {
	f.calls = append(f.calls, generatorCall{
		turns: append([]contractx.Turn(nil), turns...),
		opts:  opts,
	})
	if f.err != nil {
		return "", f.err
	}
	idx := len(f.calls) - 1
	if idx >= len(f.replies) {
		return "", fmt.Errorf("no generator reply left at call=%d", len(f.calls))
	}
	return f.replies[idx], nil
}

type fakeExtractor struct {
	filter contractx.ProductFilter
	calls  int
	lastIn string
}

func (f *fakeExtractor) Extract(ctx context.Context, conversation string) contractx.ProductFilter {
	f.calls++
	f.lastIn = conversation
	return f.filter
}

type fakeCatalog struct {
	records    []contractx.CatalogRecord
	err        error
	calls      int
	lastFilter contractx.ProductFilter
}

func (f *fakeCatalog) Lookup(ctx context.Context, filter contractx.ProductFilter) ([]contractx.CatalogRecord, error) {
	f.calls++
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return append([]contractx.CatalogRecord(nil), f.records...), nil
}

func newTestAssistant(t *testing.T, gen contractx.Generator, ext contractx.Extractor, catalog contractx.Catalog) *Assistant {
	t.Helper()

	a, err := New(gen, ext, catalog, Config{
		SystemPrompt: "You are an AI assistant for an e-commerce platform.",
		Generation:   contractx.GenOptions{Temperature: 0.7, MaxTokens: 1000},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestConverseInvalidMessage(t *testing.T) {
	t.Parallel()

	a := newTestAssistant(t, &fakeGenerator{}, &fakeExtractor{}, &fakeCatalog{})

	_, err := a.Converse(context.Background(), "   ", nil)
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestConverseUnknownHistoryRole(t *testing.T) {
	t.Parallel()

	a := newTestAssistant(t, &fakeGenerator{}, &fakeExtractor{}, &fakeCatalog{})

	_, err := a.Converse(context.Background(), "hello", []contractx.Turn{
		{Role: contractx.Role("tool"), Content: "nope"},
	})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// No trigger phrase in the draft: the draft is the answer and the catalog is
// never consulted.
func TestConverseNoTrigger(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []string{"Sure, Nike makes several shoe lines."}}
	ext := &fakeExtractor{}
	catalog := &fakeCatalog{}

	a := newTestAssistant(t, gen, ext, catalog)

	reply, err := a.Converse(context.Background(), "Do you have any Nike shoes under $100?", nil)
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}
	if reply != "Sure, Nike makes several shoe lines." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("expected one generator call, got %d", len(gen.calls))
	}
	if ext.calls != 0 {
		t.Fatalf("expected no extractor calls, got %d", ext.calls)
	}
	if catalog.calls != 0 {
		t.Fatalf("expected no catalog calls, got %d", catalog.calls)
	}
}

func TestConverseDraftSendsSystemPromptHistoryAndMessage(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []string{"Happy to help."}}
	a := newTestAssistant(t, gen, &fakeExtractor{}, &fakeCatalog{})

	history := []contractx.Turn{
		contractx.UserTurn("hi"),
		contractx.AssistantTurn("hello, how can I help?"),
	}

	if _, err := a.Converse(context.Background(), "any deals?", history); err != nil {
		t.Fatalf("Converse() error = %v", err)
	}

	turns := gen.calls[0].turns
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	if turns[0].Role != contractx.RoleSystem {
		t.Fatalf("first turn must be the system prompt, got role %q", turns[0].Role)
	}
	if turns[1] != history[0] || turns[2] != history[1] {
		t.Fatal("history must be forwarded unchanged")
	}
	if turns[3].Role != contractx.RoleUser || turns[3].Content != "any deals?" {
		t.Fatalf("last turn must be the new user message, got %+v", turns[3])
	}
	if gen.calls[0].opts.Temperature != 0.7 || gen.calls[0].opts.MaxTokens != 1000 {
		t.Fatalf("unexpected draft options: %+v", gen.calls[0].opts)
	}
}

// A triggering draft plus a non-empty lookup yields a second generation call
// whose context embeds one rendered line per record.
func TestConverseAugmentedPath(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []string{
		"let me check our inventory",
		"We carry the Air Max at $89.99 and the Pegasus at $99.50.",
	}}
	ext := &fakeExtractor{filter: contractx.ProductFilter{
		Brand:    strPtr("Nike"),
		MaxPrice: floatPtr(100),
	}}
	catalog := &fakeCatalog{records: []contractx.CatalogRecord{
		{ID: 1, Name: "Air Max 90", Brand: "Nike", RetailPrice: 89.99},
		{ID: 2, Name: "Pegasus 40", Brand: "Nike", RetailPrice: 99.5},
	}}

	a := newTestAssistant(t, gen, ext, catalog)

	reply, err := a.Converse(context.Background(), "Do you have any Nike shoes under $100?", nil)
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}
	if reply != "We carry the Air Max at $89.99 and the Pegasus at $99.50." {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if ext.calls != 1 {
		t.Fatalf("expected one extractor call, got %d", ext.calls)
	}
	if !strings.Contains(ext.lastIn, "Do you have any Nike shoes under $100?") {
		t.Fatalf("extractor must see the new message, got %q", ext.lastIn)
	}

	if catalog.calls != 1 {
		t.Fatalf("expected one catalog call, got %d", catalog.calls)
	}
	if catalog.lastFilter.Brand == nil || *catalog.lastFilter.Brand != "Nike" {
		t.Fatalf("unexpected filter brand: %+v", catalog.lastFilter)
	}
	if catalog.lastFilter.MaxPrice == nil || *catalog.lastFilter.MaxPrice != 100 {
		t.Fatalf("unexpected filter max price: %+v", catalog.lastFilter)
	}

	if len(gen.calls) != 2 {
		t.Fatalf("expected two generator calls, got %d", len(gen.calls))
	}

	final := gen.calls[1].turns
	last := final[len(final)-1]
	if last.Role != contractx.RoleSystem {
		t.Fatalf("augmentation note must be a system turn, got %q", last.Role)
	}
	if !strings.HasPrefix(last.Content, "Found these products:\n") {
		t.Fatalf("unexpected note prefix: %q", last.Content)
	}
	for _, line := range []string{
		"- Air Max 90 (Nike): $89.99",
		"- Pegasus 40 (Nike): $99.50",
	} {
		if !strings.Contains(last.Content, line) {
			t.Fatalf("note missing line %q in %q", line, last.Content)
		}
	}

	draft := final[len(final)-2]
	if draft.Role != contractx.RoleAssistant || draft.Content != "let me check our inventory" {
		t.Fatalf("draft must precede the note as an assistant turn, got %+v", draft)
	}
}

// An empty lookup must never be presented to the model: the draft stands,
// byte-for-byte, with no second call.
func TestConverseEmptyLookupFallsBackToDraft(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []string{"let me check our inventory"}}
	ext := &fakeExtractor{filter: contractx.ProductFilter{Brand: strPtr("Acme")}}
	catalog := &fakeCatalog{}

	a := newTestAssistant(t, gen, ext, catalog)

	reply, err := a.Converse(context.Background(), "Anything from Acme?", nil)
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}
	if reply != "let me check our inventory" {
		t.Fatalf("expected the draft verbatim, got %q", reply)
	}
	if catalog.calls != 1 {
		t.Fatalf("expected one catalog call, got %d", catalog.calls)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("expected no second generation call, got %d", len(gen.calls))
	}
}

// Extraction degrading to an empty filter still runs the lookup; empty
// filters are legal.
func TestConverseEmptyFilterStillQueries(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []string{
		"looking up our catalog",
		"Here are a few picks.",
	}}
	catalog := &fakeCatalog{records: []contractx.CatalogRecord{
		{ID: 7, Name: "Classic Tee", Brand: "Hanes", RetailPrice: 9},
	}}

	a := newTestAssistant(t, gen, &fakeExtractor{}, catalog)

	reply, err := a.Converse(context.Background(), "surprise me", nil)
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}
	if reply != "Here are a few picks." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if !catalog.lastFilter.IsEmpty() {
		t.Fatalf("expected empty filter, got %+v", catalog.lastFilter)
	}
}

func TestConverseLookupFailureYieldsApology(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []string{"let me check our inventory"}}
	catalog := &fakeCatalog{err: fmt.Errorf("%w: connection refused", contractx.ErrLookup)}

	a := newTestAssistant(t, gen, &fakeExtractor{}, catalog)

	reply, err := a.Converse(context.Background(), "Do you have any Nike shoes?", nil)
	if err != nil {
		t.Fatalf("Converse() must absorb the failure, got error %v", err)
	}
	if reply != ApologyReply {
		t.Fatalf("expected the apology, got %q", reply)
	}
	if strings.Contains(reply, "connection refused") {
		t.Fatal("internal error details must not leak into the reply")
	}
}

func TestConverseGenerationFailureYieldsApology(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: fmt.Errorf("%w: upstream timeout", contractx.ErrGeneration)}

	a := newTestAssistant(t, gen, &fakeExtractor{}, &fakeCatalog{})

	reply, err := a.Converse(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("Converse() must absorb the failure, got error %v", err)
	}
	if reply != ApologyReply {
		t.Fatalf("expected the apology, got %q", reply)
	}
}

// Deterministic stubs and a static catalog make converse a pure function of
// its inputs.
func TestConverseIdempotent(t *testing.T) {
	t.Parallel()

	run := func() string {
		gen := &fakeGenerator{replies: []string{
			"let me search for that",
			"Two options stand out.",
		}}
		ext := &fakeExtractor{filter: contractx.ProductFilter{Category: strPtr("Shoes")}}
		catalog := &fakeCatalog{records: []contractx.CatalogRecord{
			{ID: 1, Name: "Trail Runner", Brand: "Salomon", RetailPrice: 120},
			{ID: 2, Name: "Road Glide", Brand: "Brooks", RetailPrice: 110},
		}}

		a := newTestAssistant(t, gen, ext, catalog)
		reply, err := a.Converse(context.Background(), "recommend running shoes", []contractx.Turn{
			contractx.UserTurn("hi"),
			contractx.AssistantTurn("hello!"),
		})
		if err != nil {
			t.Fatalf("Converse() error = %v", err)
		}
		return reply
	}

	first := run()
	second := run()
	if first != second {
		t.Fatalf("Converse is not idempotent: %q vs %q", first, second)
	}
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	t.Parallel()

	cfg := Config{
		SystemPrompt: "prompt",
		Generation:   contractx.GenOptions{Temperature: 0.5, MaxTokens: 100},
	}

	if _, err := New(nil, &fakeExtractor{}, &fakeCatalog{}, cfg); err == nil {
		t.Fatal("expected error for nil generator")
	}
	if _, err := New(&fakeGenerator{}, nil, &fakeCatalog{}, cfg); err == nil {
		t.Fatal("expected error for nil extractor")
	}
	if _, err := New(&fakeGenerator{}, &fakeExtractor{}, nil, cfg); err == nil {
		t.Fatal("expected error for nil catalog")
	}

	bad := cfg
	bad.SystemPrompt = "  "
	if _, err := New(&fakeGenerator{}, &fakeExtractor{}, &fakeCatalog{}, bad); err == nil {
		t.Fatal("expected error for blank system prompt")
	}

	bad = cfg
	bad.Generation.MaxTokens = 0
	if _, err := New(&fakeGenerator{}, &fakeExtractor{}, &fakeCatalog{}, bad); err == nil {
		t.Fatal("expected error for zero token budget")
	}
}

// A custom trigger replaces the phrase scan without touching the rest of the
// pipeline.
func TestConverseCustomTrigger(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []string{
		"NEEDS_DATA",
		"With the catalog in hand, here you go.",
	}}
	catalog := &fakeCatalog{records: []contractx.CatalogRecord{
		{ID: 3, Name: "Desk Lamp", Brand: "IKEA", RetailPrice: 25},
	}}

	a, err := New(gen, &fakeExtractor{}, catalog, Config{
		SystemPrompt: "prompt",
		Generation:   contractx.GenOptions{Temperature: 0.7, MaxTokens: 1000},
		Trigger: func(draft string) bool {
			return strings.Contains(draft, "NEEDS_DATA")
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reply, err := a.Converse(context.Background(), "got lamps?", nil)
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}
	if reply != "With the catalog in hand, here you go." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if catalog.calls != 1 {
		t.Fatalf("expected one catalog call, got %d", catalog.calls)
	}
}
