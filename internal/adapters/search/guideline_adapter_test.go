package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/typesense/typesense-go/v2/typesense"
	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/typesense"
)

func TestGuidelineDocument(t *testing.T) {
	updated := time.Unix(1700000000, 0)
	doc := guidelineDocument(&entities.Guideline{
		ID:        "ssc-2021",
		Title:     " Surviving Sepsis Campaign ",
		Specialty: "Critical Care",
		Body:      "Give antibiotics within one hour.",
		Tags:      []string{"Sepsis", " sepsis", "", "ICU"},
	}, updated)

	assert.Equal(t, "Surviving Sepsis Campaign", doc["title"])
	assert.Equal(t, "critical care", doc["specialty"])
	assert.Equal(t, []string{"sepsis", "icu"}, doc["tags"])
	assert.Equal(t, int64(1700000000), doc["updated_at"])
}

func TestGuidelineFromDocument(t *testing.T) {
	g, ok := guidelineFromDocument(map[string]interface{}{
		"id":    "ssc-2021",
		"title": "Surviving Sepsis Campaign",
		"body":  "Give antibiotics within one hour.",
		"tags":  []interface{}{"sepsis", 3},
	})
	require.True(t, ok)
	assert.Equal(t, []string{"sepsis"}, g.Tags)

	_, ok = guidelineFromDocument(map[string]interface{}{"id": "empty"})
	assert.False(t, ok)
}

func TestGuidelineAdapter_SearchGuidelines(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/clinical_guidelines/documents/search", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"found": 2, "out_of": 2, "page": 1, "search_time_ms": 1,
			"hits": [
				{"document": {"id": "ssc-2021", "title": "Surviving Sepsis Campaign", "body": "Antibiotics within one hour."}},
				{"document": {"id": "broken"}}
			]
		}`))
	}))
	defer server.Close()

	client := typesense.NewClientFromTypesense(ts.NewClient(ts.WithServer(server.URL), ts.WithAPIKey("xyz")))
	adapter := NewGuidelineAdapter(client)

	guidelines, err := adapter.SearchGuidelines(context.Background(), "sepsis protocol", 2)
	require.NoError(t, err)

	assert.Equal(t, "sepsis protocol", gotQuery)
	require.Len(t, guidelines, 1)
	assert.Equal(t, "ssc-2021", guidelines[0].ID)
}

func TestGuidelineAdapter_SearchGuidelines_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	defer server.Close()

	client := typesense.NewClientFromTypesense(ts.NewClient(ts.WithServer(server.URL), ts.WithAPIKey("xyz")))
	_, err := NewGuidelineAdapter(client).SearchGuidelines(context.Background(), "sepsis", 3)
	assert.ErrorContains(t, err, "failed to search guidelines")
}
