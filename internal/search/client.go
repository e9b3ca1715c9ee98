package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"learning_copilot_backend/internal/config"
)

// ErrDocumentNotFound reports a lookup for a key the index does not hold.
var ErrDocumentNotFound = errors.New("document not found")

// Client is a thin REST client for the managed search service. One instance
// is shared by all repositories; it is safe for concurrent use.
type Client struct {
	endpoint   string
	apiKey     string
	apiVersion string
	httpClient *http.Client
}

func NewClient(cfg config.SearchConfig) *Client {
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Query is the body of a search request against one index.
type Query struct {
	Search  string `json:"search,omitempty"`
	Filter  string `json:"filter,omitempty"`
	Top     int    `json:"top,omitempty"`
	OrderBy string `json:"orderby,omitempty"`
}

type searchResponse struct {
	Value []json.RawMessage `json:"value"`
}

func (c *Client) docsURL(index, suffix string) string {
	return fmt.Sprintf("%s/indexes/%s/docs%s?api-version=%s", c.endpoint, index, suffix, c.apiVersion)
}

func (c *Client) do(ctx context.Context, method, url string, body interface{}) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return respBody, resp.StatusCode, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, resp.StatusCode, nil
}

// Search runs a query against an index and returns the raw matching
// documents in service order.
func (c *Client) Search(ctx context.Context, index string, q Query) ([]json.RawMessage, error) {
	body, _, err := c.do(ctx, http.MethodPost, c.docsURL(index, "/search"), q)
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return result.Value, nil
}

// UploadDocuments merge-or-uploads documents into an index. Each document
// must carry its key field ("id").
func (c *Client) UploadDocuments(ctx context.Context, index string, docs ...interface{}) error {
	actions := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		var action map[string]interface{}
		if err := json.Unmarshal(data, &action); err != nil {
			return err
		}
		action["@search.action"] = "mergeOrUpload"
		actions = append(actions, action)
	}

	_, _, err := c.do(ctx, http.MethodPost, c.docsURL(index, "/index"), map[string]interface{}{"value": actions})
	return err
}

// GetDocument looks a document up by key and decodes it into out. A 404
// from the service is reported as ErrDocumentNotFound.
func (c *Client) GetDocument(ctx context.Context, index, key string, out interface{}) error {
	suffix := fmt.Sprintf("('%s')", url.PathEscape(key))
	body, status, err := c.do(ctx, http.MethodGet, c.docsURL(index, suffix), nil)
	if err != nil {
		if status == http.StatusNotFound {
			return ErrDocumentNotFound
		}
		return err
	}
	return json.Unmarshal(body, out)
}

// DeleteDocuments removes documents by key.
func (c *Client) DeleteDocuments(ctx context.Context, index string, keys ...string) error {
	actions := make([]map[string]interface{}, 0, len(keys))
	for _, key := range keys {
		actions = append(actions, map[string]interface{}{
			"@search.action": "delete",
			"id":             key,
		})
	}

	_, _, err := c.do(ctx, http.MethodPost, c.docsURL(index, "/index"), map[string]interface{}{"value": actions})
	return err
}
