package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"learning_copilot_backend/internal/config"
)

// Client talks to the hosted generative-model service. Deployments are
// addressed by name; chat, embedding and image calls go to separate
// deployments configured independently.
type Client struct {
	cfg        config.AIConfig
	httpClient *http.Client
}

func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		cfg: cfg,
		// Generation calls can legitimately run for minutes; the per-request
		// context enforces the effective deadline.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat is the optional JSON-mode hint.
type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionRequest struct {
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) deploymentURL(deployment, operation string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		c.cfg.Endpoint, deployment, operation, c.cfg.APIVersion)
}

func (c *Client) post(ctx context.Context, url string, reqBody, respBody interface{}) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, respBody)
}

// ChatCompletion runs one chat call against the chat deployment and returns
// the first choice's content.
func (c *Client) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (string, error) {
	if req.Temperature == 0 {
		req.Temperature = c.cfg.Temperature
	}

	var result ChatCompletionResponse
	if err := c.post(ctx, c.deploymentURL(c.cfg.ChatDeployment, "chat/completions"), req, &result); err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// JSONCompletion is ChatCompletion with the JSON response-format hint set.
func (c *Client) JSONCompletion(ctx context.Context, system, user string) (string, error) {
	return c.ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
}

type embeddingRequest struct {
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// CreateEmbedding returns the embedding vector for one input string.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float64, error) {
	var result embeddingResponse
	if err := c.post(ctx, c.deploymentURL(c.cfg.EmbeddingDeployment, "embeddings"), embeddingRequest{Input: input}, &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("AI returned no embedding")
	}
	return result.Data[0].Embedding, nil
}

type imageRequest struct {
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImage renders one image for the prompt and returns its bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt, size string) ([]byte, error) {
	if size == "" {
		size = "1024x1024"
	}
	req := imageRequest{Prompt: prompt, Size: size, N: 1, ResponseFormat: "b64_json"}

	var result imageResponse
	if err := c.post(ctx, c.deploymentURL(c.cfg.ImageDeployment, "images/generations"), req, &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("AI returned no image")
	}
	return base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
}
