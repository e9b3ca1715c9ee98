package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"learning_copilot_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(config.SearchConfig{
		Endpoint:   srv.URL,
		APIKey:     "test-key",
		APIVersion: "2023-11-01",
	})
}

func TestSearchSendsQueryAndDecodesValue(t *testing.T) {
	var gotPath, gotKey string
	var gotQuery Query

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		json.NewDecoder(r.Body).Decode(&gotQuery)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": []map[string]string{{"id": "d1"}, {"id": "d2"}},
		})
	}))
	defer srv.Close()

	docs, err := newTestClient(srv).Search(context.Background(), "educational-content", Query{
		Search: "fractions",
		Filter: "subject eq 'math'",
		Top:    10,
	})
	require.NoError(t, err)

	assert.Len(t, docs, 2)
	assert.Equal(t, "/indexes/educational-content/docs/search", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "fractions", gotQuery.Search)
	assert.Equal(t, "subject eq 'math'", gotQuery.Filter)
	assert.Equal(t, 10, gotQuery.Top)
}

func TestSearchReportsServiceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "index not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Search(context.Background(), "missing-index", Query{Search: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestUploadDocumentsSetsMergeAction(t *testing.T) {
	var got struct {
		Value []map[string]interface{} `json:"value"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]interface{}{"value": []interface{}{}})
	}))
	defer srv.Close()

	type doc struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	err := newTestClient(srv).UploadDocuments(context.Background(), "learning-plans",
		doc{ID: "p1", Title: "one"}, doc{ID: "p2", Title: "two"})
	require.NoError(t, err)

	require.Len(t, got.Value, 2)
	assert.Equal(t, "mergeOrUpload", got.Value[0]["@search.action"])
	assert.Equal(t, "p1", got.Value[0]["id"])
	assert.Equal(t, "mergeOrUpload", got.Value[1]["@search.action"])
}

func TestGetDocumentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := newTestClient(srv).GetDocument(context.Background(), "learning-plans", "missing", &out)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestGetDocumentDecodesBody(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]string{"id": "p1", "title": "found"})
	}))
	defer srv.Close()

	var out struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	err := newTestClient(srv).GetDocument(context.Background(), "learning-plans", "p1", &out)
	require.NoError(t, err)
	assert.Equal(t, "found", out.Title)
	assert.Equal(t, "/indexes/learning-plans/docs('p1')", gotPath)
}

func TestDeleteDocumentsSendsDeleteActions(t *testing.T) {
	var got struct {
		Value []map[string]interface{} `json:"value"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]interface{}{"value": []interface{}{}})
	}))
	defer srv.Close()

	err := newTestClient(srv).DeleteDocuments(context.Background(), "learning-plans", "p1")
	require.NoError(t, err)

	require.Len(t, got.Value, 1)
	assert.Equal(t, "delete", got.Value[0]["@search.action"])
	assert.Equal(t, "p1", got.Value[0]["id"])
}
