package evaluation

import (
	"context"
	"time"

	"github.com/zatekoja/medibot/internal/domain/entities"
)

// QueryClassifier routes a query to its data sources.
type QueryClassifier interface {
	ClassifyQuery(ctx context.Context, query string) (entities.Classification, error)
}

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	classifier QueryClassifier
}

func NewRunner(classifier QueryClassifier) *Runner {
	return &Runner{classifier: classifier}
}

// Run classifies every query. A failed classification counts as a miss, not as a
// prediction, so it lowers accuracy without entering the confusion matrix.
func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalQueries: len(queries),
		ByClass:      make(map[entities.Classification]*ClassSummary),
	}
	confusion := Confusion{}

	for _, gq := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		predicted, err := r.classifier.ClassifyQuery(ctx, gq.Query)
		result := EvalResult{
			QueryID:   gq.ID,
			Query:     gq.Query,
			Expected:  gq.Expected,
			Predicted: predicted,
			Correct:   err == nil && predicted == gq.Expected,
			Err:       err,
			Latency:   time.Since(start),
		}

		if err == nil {
			confusion.Add(gq.Expected, predicted)
		}
		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary, confusion)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.AvgLatency += res.Latency

	if _, ok := s.ByClass[res.Expected]; !ok {
		s.ByClass[res.Expected] = &ClassSummary{}
	}
	s.ByClass[res.Expected].Count++

	switch {
	case res.Err != nil:
		s.Errors++
		s.Misses = append(s.Misses, Miss{QueryID: res.QueryID, Query: res.Query, Expected: res.Expected, Error: res.Err.Error()})
	case res.Correct:
		s.Correct++
	default:
		s.Misses = append(s.Misses, Miss{QueryID: res.QueryID, Query: res.Query, Expected: res.Expected, Predicted: res.Predicted})
	}
}

func (r *Runner) finalizeSummary(s *EvalSummary, confusion Confusion) {
	s.Accuracy = Accuracy(s.Correct, s.TotalQueries)
	if s.TotalQueries > 0 {
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}

	for class, cs := range s.ByClass {
		cs.Precision = confusion.Precision(class)
		cs.Recall = confusion.Recall(class)
	}
	s.Confusion = confusion
}
