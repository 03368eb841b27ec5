package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/typesense"
)

const guidelineQueryBy = "title,tags,body"

// GuidelineAdapter implements providers.GuidelineSearchProvider over Typesense.
type GuidelineAdapter struct {
	client *typesense.Client
}

// NewGuidelineAdapter creates a new guideline adapter
func NewGuidelineAdapter(client *typesense.Client) *GuidelineAdapter {
	return &GuidelineAdapter{client: client}
}

// InitSchema ensures the guidelines collection exists
func (a *GuidelineAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index upserts a guideline document
func (a *GuidelineAdapter) Index(ctx context.Context, g *entities.Guideline) error {
	if g == nil || g.ID == "" {
		return fmt.Errorf("guideline id is required")
	}
	_, err := a.client.Client().Collection(typesense.GuidelinesCollection).Documents().Upsert(ctx, guidelineDocument(g, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to index guideline %s: %w", g.ID, err)
	}
	return nil
}

// SearchGuidelines returns up to limit guidelines matching query
func (a *GuidelineAdapter) SearchGuidelines(ctx context.Context, query string, limit int) ([]entities.Guideline, error) {
	if limit <= 0 {
		limit = 3
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String(guidelineQueryBy),
		PerPage: pointer.Int(limit),
		Page:    pointer.Int(1),
	}

	result, err := a.client.Client().Collection(typesense.GuidelinesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search guidelines: %w", err)
	}
	if result.Hits == nil {
		return nil, nil
	}

	guidelines := make([]entities.Guideline, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if g, ok := guidelineFromDocument(*hit.Document); ok {
			guidelines = append(guidelines, g)
		}
	}
	return guidelines, nil
}

func guidelineDocument(g *entities.Guideline, updatedAt time.Time) map[string]interface{} {
	doc := map[string]interface{}{
		"id":         g.ID,
		"title":      strings.TrimSpace(g.Title),
		"body":       strings.TrimSpace(g.Body),
		"tags":       normalizeTags(g.Tags),
		"updated_at": updatedAt.Unix(),
	}
	if g.Specialty != "" {
		doc["specialty"] = strings.ToLower(strings.TrimSpace(g.Specialty))
	}
	return doc
}

// guidelineFromDocument rejects hits missing an id or body.
func guidelineFromDocument(doc map[string]interface{}) (entities.Guideline, bool) {
	id, _ := doc["id"].(string)
	body, _ := doc["body"].(string)
	if id == "" || body == "" {
		return entities.Guideline{}, false
	}

	g := entities.Guideline{ID: id, Body: body}
	g.Title, _ = doc["title"].(string)
	g.Specialty, _ = doc["specialty"].(string)
	if raw, ok := doc["tags"].([]interface{}); ok {
		for _, t := range raw {
			if s, ok := t.(string); ok {
				g.Tags = append(g.Tags, s)
			}
		}
	}
	return g, true
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
