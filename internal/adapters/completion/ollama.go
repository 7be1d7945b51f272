package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaModel = "llama3.2"

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// OllamaClient talks to a self-hosted Ollama runtime over its generate
// endpoint.
type OllamaClient struct {
	host  string
	model string
	http  httpDoer
}

func NewOllamaClient(host string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		host:  strings.TrimRight(strings.TrimSpace(host), "/"),
		model: defaultOllamaModel,
		http:  newHTTPClient(timeout),
	}
}

func (c *OllamaClient) SetModel(model string) {
	model = strings.TrimSpace(model)
	if model != "" {
		c.model = model
	}
}

func (c *OllamaClient) SetHTTPClient(client httpDoer) {
	if client != nil {
		c.http = client
	}
}

func (c *OllamaClient) Name() string { return "ollama" }

func (c *OllamaClient) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	payload := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: strings.TrimSpace(systemPrompt) + "\nUser input: " + userText,
		Stream: false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ollama: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("ollama: failed to read response: %w", err)
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("ollama: failed to decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := strings.TrimSpace(parsed.Error)
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("ollama: api error: %s", msg)
	}

	if strings.TrimSpace(parsed.Response) == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyCompletion)
	}

	return parsed.Response, nil
}
