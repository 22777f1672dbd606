package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Total number of chat turns handled, by outcome",
		},
		[]string{"outcome"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_stage_failures_total",
			Help: "Total number of pipeline failures absorbed at the orchestrator boundary, by stage",
		},
		[]string{"stage"},
	)

	ExtractionDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_extraction_drops_total",
			Help: "Total number of filter extractions silently dropped to an empty filter",
		},
	)

	CatalogLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_lookups_total",
			Help: "Total number of catalog lookups issued during augmentation, by result",
		},
		[]string{"result"},
	)
)

const (
	OutcomeOK      = "ok"
	OutcomeApology = "apology"

	LookupHit   = "hit"
	LookupEmpty = "empty"
	LookupError = "error"
)
