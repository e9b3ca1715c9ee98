package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"learning_copilot_backend/internal/ai"
	"learning_copilot_backend/internal/config"
	"learning_copilot_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embeddingServer maps input substrings to fixed vectors so similarity
// ordering is deterministic.
func embeddingServer(t *testing.T, vectors map[string][]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/embeddings")

		var req struct {
			Input string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad embedding request: %v", err)
			fmt.Fprint(w, `{"data":[]}`)
			return
		}

		for key, vec := range vectors {
			if strings.Contains(req.Input, key) {
				fmt.Fprintf(w, `{"data":[{"embedding":%s}]}`, mustJSON(t, vec))
				return
			}
		}
		t.Errorf("no vector registered for input %q", req.Input)
		fmt.Fprint(w, `{"data":[]}`)
	}))
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func qaCandidates() []model.ContentItem {
	return []model.ContentItem{
		{ID: "c1", Title: "Long division", Description: "Dividing large numbers step by step"},
		{ID: "c2", Title: "Fractions", Description: "Adding and comparing fractions"},
		{ID: "c3", Title: "Photosynthesis", Description: "How plants make food"},
	}
}

func TestRankByRelevanceReordersBySimilarity(t *testing.T) {
	srv := embeddingServer(t, map[string][]float64{
		"how do":         {1, 0, 0}, // the question
		"Long division":  {0.2, 0.9, 0},
		"Fractions.":     {0.95, 0.1, 0},
		"Photosynthesis": {0, 0, 1},
	})
	defer srv.Close()

	svc := &QAService{AI: ai.NewClient(config.AIConfig{Endpoint: srv.URL, APIVersion: "2024-02-01", EmbeddingDeployment: "embed-test"})}

	ranked := svc.rankByRelevance(context.Background(), "how do fractions work", qaCandidates())

	require.Len(t, ranked, 3)
	assert.Equal(t, "c2", ranked[0].ID)
	assert.Equal(t, "c1", ranked[1].ID)
	assert.Equal(t, "c3", ranked[2].ID)
}

func TestRankByRelevanceKeepsKeywordOrderOnEmbeddingFailure(t *testing.T) {
	svc := &QAService{AI: ai.NewClient(config.AIConfig{Endpoint: "http://127.0.0.1:1", EmbeddingDeployment: "embed-test"})}

	candidates := qaCandidates()
	ranked := svc.rankByRelevance(context.Background(), "how do fractions work", candidates)

	assert.Equal(t, candidates, ranked)
}

func TestRankByRelevanceSkipsSingleCandidate(t *testing.T) {
	// One candidate needs no ranking, so no embedding call happens.
	svc := &QAService{AI: ai.NewClient(config.AIConfig{Endpoint: "http://127.0.0.1:1"})}

	one := qaCandidates()[:1]
	assert.Equal(t, one, svc.rankByRelevance(context.Background(), "anything", one))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}), "mismatched dimensions score zero")
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
