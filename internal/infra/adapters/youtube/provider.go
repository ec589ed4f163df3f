// Package youtube resolves song queries against the YouTube Data API v3.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auxroom/auxroom/internal/domain"
)

// TrackInfo is raw provider metadata. Fields may be empty, the playlist
// usecase applies display defaults.
type TrackInfo struct {
	ID         string
	Title      string
	Artist     string
	Thumbnail  string
	DurationMS int64
}

// Provider resolves a free-form song query to one or more tracks.
// Returns domain.ErrNoResults when nothing matches.
type Provider interface {
	Resolve(ctx context.Context, query string) ([]TrackInfo, error)
}

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL exists for tests against a stub server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Resolve classifies the query: a recognized video URL is a direct request,
// a URL carrying a playlist marker resolves the whole playlist, anything
// else is a top-1 search.
func (c *Client) Resolve(ctx context.Context, query string) ([]TrackInfo, error) {
	if playlistID, ok := PlaylistIDFrom(query); ok {
		return c.playlist(ctx, playlistID)
	}

	if videoID, ok := VideoIDFrom(query); ok {
		return c.videos(ctx, videoID)
	}

	return c.search(ctx, query)
}

func (c *Client) search(ctx context.Context, query string) ([]TrackInfo, error) {
	params := url.Values{
		"part":       {"snippet"},
		"type":       {"video"},
		"maxResults": {"1"},
		"q":          {query},
	}

	var resp struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}

	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 || resp.Items[0].ID.VideoID == "" {
		return nil, domain.ErrNoResults
	}

	return c.videos(ctx, resp.Items[0].ID.VideoID)
}

func (c *Client) playlist(ctx context.Context, playlistID string) ([]TrackInfo, error) {
	params := url.Values{
		"part":       {"contentDetails"},
		"maxResults": {"50"},
		"playlistId": {playlistID},
	}

	var resp struct {
		Items []struct {
			ContentDetails struct {
				VideoID string `json:"videoId"`
			} `json:"contentDetails"`
		} `json:"items"`
	}

	if err := c.get(ctx, "/playlistItems", params, &resp); err != nil {
		return nil, err
	}

	videoIDs := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails.VideoID != "" {
			videoIDs = append(videoIDs, item.ContentDetails.VideoID)
		}
	}

	if len(videoIDs) == 0 {
		return nil, domain.ErrNoResults
	}

	return c.videos(ctx, videoIDs...)
}

func (c *Client) videos(ctx context.Context, videoIDs ...string) ([]TrackInfo, error) {
	params := url.Values{
		"part": {"snippet,contentDetails"},
		"id":   {strings.Join(videoIDs, ",")},
	}

	var resp struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				ChannelTitle string `json:"channelTitle"`
				Thumbnails   struct {
					Medium struct {
						URL string `json:"url"`
					} `json:"medium"`
					Default struct {
						URL string `json:"url"`
					} `json:"default"`
				} `json:"thumbnails"`
			} `json:"snippet"`
			ContentDetails struct {
				Duration string `json:"duration"`
			} `json:"contentDetails"`
		} `json:"items"`
	}

	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 {
		return nil, domain.ErrNoResults
	}

	tracks := make([]TrackInfo, 0, len(resp.Items))
	for _, item := range resp.Items {
		thumbnail := item.Snippet.Thumbnails.Medium.URL
		if thumbnail == "" {
			thumbnail = item.Snippet.Thumbnails.Default.URL
		}

		tracks = append(tracks, TrackInfo{
			ID:         item.ID,
			Title:      item.Snippet.Title,
			Artist:     item.Snippet.ChannelTitle,
			Thumbnail:  thumbnail,
			DurationMS: ParseISODurationMS(item.ContentDetails.Duration),
		})
	}

	return tracks, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube response: %w", err)
	}

	return nil
}
