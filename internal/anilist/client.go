package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound indicates the requested media ID does not exist on AniList.
var ErrNotFound = errors.New("anilist media not found")

const mediaFields = `
      id
      title { romaji english native }
      synonyms
      format
      status
      averageScore
      nextAiringEpisode { airingAt episode }
      airingSchedule(notYetAired: true, perPage: 5) { nodes { airingAt episode } }`

const searchQuery = `
query ($search: String, $formats: [MediaFormat]) {
  Page(perPage: 10) {
    media(search: $search, type: ANIME, sort: POPULARITY_DESC, format_in: $formats) {` + mediaFields + `
    }
  }
}`

const lookupQuery = `
query ($id: Int) {
  Media(id: $id, type: ANIME) {` + mediaFields + `
  }
}`

// Client provides access to the AniList GraphQL API.
type Client struct {
	token      string
	baseURL    string
	formats    []string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an AniList client. The token is optional; unauthenticated
// requests are permitted at a lower rate limit. formats restricts search
// results to the given media formats.
func New(token, baseURL string, formats []string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("anilist base url required")
	}
	client := &Client{
		token:      strings.TrimSpace(token),
		baseURL:    strings.TrimRight(baseURL, "/"),
		formats:    formats,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search returns up to ten candidate media entries for the supplied
// title, restricted to the configured formats and sorted by popularity.
func (c *Client) Search(ctx context.Context, title string) ([]Media, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("search title must not be empty")
	}

	payload, err := c.post(ctx, searchQuery, map[string]any{
		"search":  title,
		"formats": c.formats,
	})
	if err != nil {
		return nil, err
	}

	var data struct {
		Page struct {
			Media []mediaPayload `json:"media"`
		} `json:"Page"`
	}
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	media := make([]Media, 0, len(data.Page.Media))
	for _, entry := range data.Page.Media {
		media = append(media, entry.toMedia())
	}
	return media, nil
}

// Fetch returns the media entry with the given AniList ID, or ErrNotFound.
func (c *Client) Fetch(ctx context.Context, id int64) (*Media, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid anilist id %d", id)
	}

	payload, err := c.post(ctx, lookupQuery, map[string]any{"id": id})
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("media %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	var data struct {
		Media *mediaPayload `json:"Media"`
	}
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	if data.Media == nil {
		return nil, fmt.Errorf("media %d: %w", id, ErrNotFound)
	}
	media := data.Media.toMedia()
	return &media, nil
}

// post executes a GraphQL request and returns the raw "data" payload.
func (c *Client) post(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anilist request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("anilist rate limited (retry-after %s)", resp.Header.Get("Retry-After"))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read anilist response: %w", err)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
			Status  int    `json:"status"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode anilist response (status %d): %w", resp.StatusCode, err)
	}
	if len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		return nil, &apiError{status: first.Status, message: first.Message}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("anilist returned status %d", resp.StatusCode)
	}
	return envelope.Data, nil
}

type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	if e.status != 0 {
		return fmt.Sprintf("anilist error (status %d): %s", e.status, e.message)
	}
	return "anilist error: " + e.message
}

func isNotFoundError(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.status == http.StatusNotFound
}

// mediaPayload mirrors the GraphQL wire shape, with the airing schedule
// nested under a nodes connection.
type mediaPayload struct {
	Media
	AiringSchedule struct {
		Nodes []AiringEpisode `json:"nodes"`
	} `json:"airingSchedule"`
}

func (p mediaPayload) toMedia() Media {
	media := p.Media
	media.UpcomingEpisodes = p.AiringSchedule.Nodes
	if media.NextAiring != nil && len(media.UpcomingEpisodes) == 0 {
		media.UpcomingEpisodes = []AiringEpisode{*media.NextAiring}
	}
	return media
}
