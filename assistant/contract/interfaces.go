package contract

import "context"

// Generator produces one chat completion for an ordered turn sequence.
type Generator interface {
	Complete(ctx context.Context, turns []Turn, opts GenOptions) (string, error)
}

// Extractor derives catalog filters from free-form conversation text. It is
// best-effort by contract: it never fails the turn, it degrades to an empty
// filter.
type Extractor interface {
	Extract(ctx context.Context, conversation string) ProductFilter
}

// Catalog is the read-only product lookup used during augmentation.
type Catalog interface {
	Lookup(ctx context.Context, filter ProductFilter) ([]CatalogRecord, error)
}

// TriggerPredicate reports whether a draft reply signals that the model wants
// external data. It exists so the substring heuristic can be swapped for a
// structured tool-call protocol without touching the pipeline.
type TriggerPredicate func(draft string) bool
