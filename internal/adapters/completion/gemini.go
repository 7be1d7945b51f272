package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GeminiClient talks to the Gemini generateContent endpoint. Gemini has
// no separate system role here; the system prompt and user text are
// sent as one combined part.
type GeminiClient struct {
	apiKey  string
	baseURL string
	model   string
	http    httpDoer
}

func NewGeminiClient(apiKey string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultGeminiBaseURL,
		model:   defaultGeminiModel,
		http:    newHTTPClient(timeout),
	}
}

func (c *GeminiClient) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

func (c *GeminiClient) SetModel(model string) {
	model = strings.TrimSpace(model)
	if model != "" {
		c.model = model
	}
}

func (c *GeminiClient) SetHTTPClient(client httpDoer) {
	if client != nil {
		c.http = client
	}
}

func (c *GeminiClient) Name() string { return "gemini" }

func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	combined := strings.TrimSpace(systemPrompt) + "\nUser input: " + userText

	payload := geminiGenerateRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: combined}}}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("gemini: failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to read response: %w", err)
	}

	var parsed geminiGenerateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("gemini: failed to decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := strings.TrimSpace(parsed.Error.Message)
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("gemini: api error: %s", msg)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyCompletion)
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
