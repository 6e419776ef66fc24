// Package analyst generates match intelligence reports and tipperbot picks
// with a three stage agent pipeline on the OpenAI Responses API: a planner
// proposes web searches, each search is summarised with the web search tool,
// and an analyst turns the summaries into the final output.
//
// Rate limiting is handled via a token bucket limiter shared by all stages.
package analyst

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("analyst: OPENAI_API_KEY is not set")

// Client is a minimal Responses API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a rate-limited client. An empty apiKey yields a client
// whose calls fail with ErrDisabled.
func NewClient(baseURL, apiKey, model string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute < 1 {
		requestsPerMinute = 60
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 3 * time.Minute},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type tool struct {
	Type              string `json:"type"`
	SearchContextSize string `json:"search_context_size,omitempty"`
}

type textFormat struct {
	Type   string          `json:"type"`
	Name   string          `json:"name,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
	Strict bool            `json:"strict,omitempty"`
}

type responseRequest struct {
	Model        string `json:"model"`
	Instructions string `json:"instructions,omitempty"`
	Input        string `json:"input"`
	Tools        []tool `json:"tools,omitempty"`
	ToolChoice   string `json:"tool_choice,omitempty"`
	Text         *struct {
		Format textFormat `json:"format"`
	} `json:"text,omitempty"`
}

type responseBody struct {
	Status string `json:"status"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// call is one model turn.
type call struct {
	instructions string
	input        string
	webSearch    bool
	schemaName   string
	schema       json.RawMessage
}

// respond performs a rate-limited POST /responses and returns the
// concatenated output text.
func (c *Client) respond(ctx context.Context, in call) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody := responseRequest{
		Model:        c.model,
		Instructions: in.instructions,
		Input:        in.input,
	}
	if in.webSearch {
		reqBody.Tools = []tool{{Type: "web_search_preview", SearchContextSize: "low"}}
		reqBody.ToolChoice = "required"
	}
	if in.schema != nil {
		reqBody.Text = &struct {
			Format textFormat `json:"format"`
		}{Format: textFormat{Type: "json_schema", Name: in.schemaName, Schema: in.schema, Strict: true}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request /responses: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI /responses returned %d: %s", resp.StatusCode, truncate(body, 300))
	}

	var out responseBody
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("OpenAI error %s: %s", out.Error.Code, out.Error.Message)
	}
	if out.Status == "incomplete" && out.IncompleteDetails != nil {
		return "", fmt.Errorf("response incomplete: %s", out.IncompleteDetails.Reason)
	}

	var sb strings.Builder
	for _, item := range out.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				sb.WriteString(part.Text)
			}
		}
	}
	return sb.String(), nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
