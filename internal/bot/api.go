// Package bot implements the Telegram side of the ledger: the webhook
// server that receives updates and the client that sends replies.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Update is the payload Telegram POSTs to the webhook. Only the fields
// the dispatcher reads are declared.
type (
	Update struct {
		UpdateID int64    `json:"update_id"`
		Message  *Message `json:"message"`
	}

	Message struct {
		MessageID int64  `json:"message_id"`
		Text      string `json:"text"`
		Chat      Chat   `json:"chat"`
	}

	Chat struct {
		ID int64 `json:"id"`
	}
)

// Sender delivers a text reply to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Client talks to the Telegram Bot API over HTTPS.
type Client struct {
	token   string
	baseURL string
	httpc   *http.Client
}

var _ Sender = (*Client)(nil)

const defaultAPIBase = "https://api.telegram.org"

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultAPIBase,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBase overrides the API host, used in tests.
func NewClientWithBase(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage posts a sendMessage call. Telegram reports logical
// failures with ok=false in the body, so both transport and API errors
// surface here.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("read sendMessage response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return fmt.Errorf("decode sendMessage response (status %d): %w", resp.StatusCode, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, apiResp.Description)
	}
	return nil
}

// SetWebhook registers the public webhook URL with Telegram.
func (c *Client) SetWebhook(ctx context.Context, webhookURL string) error {
	body, err := json.Marshal(map[string]string{"url": webhookURL})
	if err != nil {
		return fmt.Errorf("marshal setWebhook: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/setWebhook", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build setWebhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("read setWebhook response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return fmt.Errorf("decode setWebhook response (status %d): %w", resp.StatusCode, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, apiResp.Description)
	}
	return nil
}
