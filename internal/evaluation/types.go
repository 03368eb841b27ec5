package evaluation

import (
	"time"

	"github.com/zatekoja/medibot/internal/domain/entities"
)

// GoldenQuery represents a labeled query with its expected routing.
type GoldenQuery struct {
	ID         string                  `json:"id"`
	Query      string                  `json:"query"`
	Expected   entities.Classification `json:"expected"`
	Difficulty string                  `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID   string
	Query     string
	Expected  entities.Classification
	Predicted entities.Classification
	Correct   bool
	Err       error
	Latency   time.Duration
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries int
	Correct      int
	Errors       int
	Accuracy     float64
	AvgLatency   time.Duration
	ByClass      map[entities.Classification]*ClassSummary
	// Confusion counts predictions per expected class.
	Confusion map[entities.Classification]map[entities.Classification]int
	Misses    []Miss
}

// ClassSummary holds per-classification precision and recall.
type ClassSummary struct {
	Count     int
	Precision float64
	Recall    float64
}

// Miss records a query the classifier routed differently than expected.
type Miss struct {
	QueryID   string                  `json:"query_id"`
	Query     string                  `json:"query"`
	Expected  entities.Classification `json:"expected"`
	Predicted entities.Classification `json:"predicted,omitempty"`
	Error     string                  `json:"error,omitempty"`
}
