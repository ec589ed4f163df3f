// Package twitchauth refreshes the bot's OAuth token against the Twitch
// identity endpoint.
package twitchauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTokenURL = "https://id.twitch.tv/oauth2/token"

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresher exchanges a refresh token for a fresh token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type Client struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
}

func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     defaultTokenURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithTokenURL exists for tests against a stub server.
func NewClientWithTokenURL(clientID, clientSecret, tokenURL string) *Client {
	c := NewClient(clientID, clientSecret)
	c.tokenURL = tokenURL
	return c
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("refresh token rejected with status %d", resp.StatusCode)
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, fmt.Errorf("token response missing tokens")
	}

	return &pair, nil
}
