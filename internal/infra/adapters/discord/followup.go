// Package discord holds the outbound Discord REST pieces: followup messages
// sent after a deferred interaction response.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

const defaultBaseURL = "https://discord.com/api/v10"

// FollowupSender delivers the terminal message of a deferred interaction.
type FollowupSender interface {
	Send(ctx context.Context, appID snowflake.ID, interactionToken, content string) error
}

type WebhookClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewWebhookClient() *WebhookClient {
	return &WebhookClient{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewWebhookClientWithBaseURL exists for tests against a stub server.
func NewWebhookClientWithBaseURL(baseURL string) *WebhookClient {
	c := NewWebhookClient()
	c.baseURL = baseURL
	return c
}

func (c *WebhookClient) Send(ctx context.Context, appID snowflake.ID, interactionToken, content string) error {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/webhooks/%s/%s", c.baseURL, appID, interactionToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send followup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("followup rejected with status %d: %s", resp.StatusCode, detail)
	}

	return nil
}
