package nodes

import (
	"context"
	"fmt"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
	"github.com/shoptalk-ai/shoptalk/pkg/metrics"
)

// LookupCatalog runs the bounded catalog query with whatever filters were
// extracted. A store failure aborts the turn and is translated to an apology
// at the orchestrator boundary; an empty result is not an error.
func LookupCatalog(ctx context.Context, in *TurnState, catalog contractx.Catalog) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}

	records, err := catalog.Lookup(ctx, in.Filter)
	if err != nil {
		metrics.CatalogLookups.WithLabelValues(metrics.LookupError).Inc()
		return nil, err
	}

	if len(records) == 0 {
		metrics.CatalogLookups.WithLabelValues(metrics.LookupEmpty).Inc()
	} else {
		metrics.CatalogLookups.WithLabelValues(metrics.LookupHit).Inc()
	}

	in.Records = records
	return in, nil
}
