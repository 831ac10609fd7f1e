// Package telegram implements the messaging port over the Telegram Bot HTTP API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/botfactory/botfactory/internal/domain/update"
	"github.com/botfactory/botfactory/internal/port/messaging"
	"github.com/botfactory/botfactory/internal/resilience"
)

// Dialer creates per-bot clients over a shared HTTP transport and a shared
// circuit breaker, so a platform outage trips once for all tenants.
type Dialer struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewDialer creates a Dialer for the given API base URL. timeout bounds
// outbound calls; long-poll pulls extend it by the requested wait.
func NewDialer(baseURL string, timeout time.Duration) *Dialer {
	return &Dialer{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing calls.
func (d *Dialer) SetBreaker(b *resilience.Breaker) {
	d.breaker = b
}

// Dial returns a Client bound to one bot credential.
func (d *Dialer) Dial(token string) messaging.Client {
	return &Client{dialer: d, token: token}
}

// Client talks to the Bot API on behalf of one bot token.
type Client struct {
	dialer *Dialer
	token  string
}

// apiResponse is the Bot API envelope around every method result.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description,omitempty"`
}

// Pull long-polls getUpdates starting at offset, blocking up to wait.
func (c *Client) Pull(ctx context.Context, offset int64, wait time.Duration) ([]update.Raw, error) {
	params := url.Values{}
	params.Set("timeout", strconv.Itoa(int(wait.Seconds())))
	if offset > 0 {
		params.Set("offset", strconv.FormatInt(offset, 10))
	}

	// The poll wait is server-side; give the transport headroom on top.
	ctx, cancel := context.WithTimeout(ctx, wait+c.dialer.httpClient.Timeout)
	defer cancel()

	raw, err := c.call(ctx, "getUpdates?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pull updates: %w", err)
	}

	var updates []update.Raw
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("unmarshal updates: %w", err)
	}
	return updates, nil
}

// SendText delivers plain text, with an optional inline keyboard.
func (c *Client) SendText(ctx context.Context, chatID int64, text string, kb *messaging.Keyboard) error {
	body := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if kb != nil {
		body["reply_markup"] = markup(kb)
	}
	if _, err := c.call(ctx, "sendMessage", body); err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	return nil
}

// SendTextTo delivers plain text to an "@channel" name or stringified chat id.
func (c *Client) SendTextTo(ctx context.Context, target, text string) error {
	body := map[string]any{
		"chat_id": target,
		"text":    text,
	}
	if _, err := c.call(ctx, "sendMessage", body); err != nil {
		return fmt.Errorf("send text to %s: %w", target, err)
	}
	return nil
}

// SendMedia delivers a photo by URL or platform file id, with a caption.
func (c *Client) SendMedia(ctx context.Context, chatID int64, mediaRef, caption string) error {
	body := map[string]any{
		"chat_id": chatID,
		"photo":   mediaRef,
	}
	if caption != "" {
		body["caption"] = caption
	}
	if _, err := c.call(ctx, "sendPhoto", body); err != nil {
		return fmt.Errorf("send media: %w", err)
	}
	return nil
}

// SendChatAction shows a transient status indicator.
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	body := map[string]any{"chat_id": chatID, "action": action}
	if _, err := c.call(ctx, "sendChatAction", body); err != nil {
		return fmt.Errorf("send chat action: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a button press.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	body := map[string]any{"callback_query_id": callbackID}
	if _, err := c.call(ctx, "answerCallbackQuery", body); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// MediaURL resolves a file id to a downloadable URL via getFile.
func (c *Client) MediaURL(ctx context.Context, fileID string) (string, error) {
	raw, err := c.call(ctx, "getFile", map[string]any{"file_id": fileID})
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	var result struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("unmarshal file info: %w", err)
	}
	if result.FilePath == "" {
		return "", fmt.Errorf("get file %s: empty file_path", fileID)
	}
	return fmt.Sprintf("%s/file/bot%s/%s", c.dialer.baseURL, c.token, result.FilePath), nil
}

// Validate checks the credential via getMe.
func (c *Client) Validate(ctx context.Context) error {
	if _, err := c.call(ctx, "getMe", nil); err != nil {
		return fmt.Errorf("validate token: %w", err)
	}
	return nil
}

// call performs one Bot API method call and unwraps the response envelope.
func (c *Client) call(ctx context.Context, method string, body map[string]any) (json.RawMessage, error) {
	var result json.RawMessage
	do := func() error {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("marshal body: %w", err)
			}
			reader = bytes.NewReader(data)
		}

		endpoint := fmt.Sprintf("%s/bot%s/%s", c.dialer.baseURL, c.token, method)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.dialer.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		var envelope apiResponse
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("bot API status %d: %w", resp.StatusCode, err)
		}
		if !envelope.OK {
			return fmt.Errorf("bot API error %d: %s", resp.StatusCode, envelope.Description)
		}

		result = envelope.Result
		return nil
	}

	if b := c.dialer.breaker; b != nil {
		if err := b.Execute(do); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := do(); err != nil {
		return nil, err
	}
	return result, nil
}

// markup converts a port keyboard into the Bot API inline keyboard shape.
func markup(kb *messaging.Keyboard) map[string]any {
	rows := make([][]map[string]any, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]map[string]any, 0, len(row))
		for _, b := range row {
			btn := map[string]any{"text": b.Text}
			if b.CallbackData != "" {
				btn["callback_data"] = b.CallbackData
			}
			if b.URL != "" {
				btn["url"] = b.URL
			}
			buttons = append(buttons, btn)
		}
		rows = append(rows, buttons)
	}
	return map[string]any{"inline_keyboard": rows}
}
