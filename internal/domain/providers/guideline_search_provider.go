package providers

import (
	"context"

	"github.com/zatekoja/medibot/internal/domain/entities"
)

// GuidelineSearchProvider finds clinical guideline excerpts relevant to a query.
type GuidelineSearchProvider interface {
	SearchGuidelines(ctx context.Context, query string, limit int) ([]entities.Guideline, error)
}
