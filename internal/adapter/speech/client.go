// Package speech implements the transcriber port over a speech-to-text HTTP service.
package speech

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

// Client sends media URLs to a transcription service and returns the text.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a transcription client. An empty baseURL yields a client
// whose Transcribe always fails, so voice support degrades per-bot.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether a transcription endpoint is set.
func (c *Client) Configured() bool { return c.baseURL != "" }

// Transcribe downloads and transcribes the media at mediaURL in the given
// language, returning the recognized text.
func (c *Client) Transcribe(ctx context.Context, mediaURL, language string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("transcription service not configured")
	}

	body, err := json.Marshal(map[string]string{
		"url":      mediaURL,
		"language": language,
	})
	if err != nil {
		return "", fmt.Errorf("marshal transcribe request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("transcription API error %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("unmarshal transcription: %w", err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", fmt.Errorf("transcription returned no text")
	}
	return strings.TrimSpace(result.Text), nil
}
