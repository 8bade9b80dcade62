package plex

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/logging"
)

const userAgent = "kometa-anilist-overlay/0.1.0"

// ErrLibraryNotFound indicates the configured library section does not
// exist on the server.
var ErrLibraryNotFound = errors.New("plex library not found")

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to a single Plex server.
type Client struct {
	baseURL    string
	token      string
	client     HTTPDoer
	logger     *slog.Logger
	retries    uint
	retryDelay time.Duration
}

// Option adjusts client construction.
type Option func(*Client)

// WithHTTPClient replaces the HTTP backend.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// WithRetries sets the connection retry budget and the delay between
// attempts.
func WithRetries(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retries = uint(attempts)
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// NewClient creates a Plex client for the given server URL and token.
func NewClient(baseURL, token string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      strings.TrimSpace(token),
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logging.NewComponentLogger(logger, "plex"),
		retries:    5,
		retryDelay: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListShowTitles returns the title of every show in the named library
// section. Connection-level failures are retried before giving up; a
// missing library is reported immediately via ErrLibraryNotFound.
func (c *Client) ListShowTitles(ctx context.Context, library string) ([]string, error) {
	var titles []string
	err := retry.Do(
		func() error {
			var err error
			titles, err = c.listShowTitles(ctx, library)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.retries),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrLibraryNotFound)
		}),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.Warn("plex connection failed, retrying",
				logging.Int("attempt", int(attempt)+1),
				logging.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}
	return titles, nil
}

func (c *Client) listShowTitles(ctx context.Context, library string) ([]string, error) {
	key, err := c.sectionKey(ctx, library)
	if err != nil {
		return nil, err
	}

	// type=2 restricts the listing to shows.
	url := fmt.Sprintf("%s/library/sections/%s/all?type=2", c.baseURL, key)
	var container struct {
		Directories []struct {
			Title string `xml:"title,attr"`
		} `xml:"Directory"`
	}
	if err := c.getXML(ctx, url, &container); err != nil {
		return nil, fmt.Errorf("list shows in %q: %w", library, err)
	}

	titles := make([]string, 0, len(container.Directories))
	for _, dir := range container.Directories {
		title := strings.TrimSpace(dir.Title)
		if title == "" {
			continue
		}
		titles = append(titles, title)
	}

	c.logger.Debug("listed library shows",
		logging.String("library", library),
		logging.Int("show_count", len(titles)))
	return titles, nil
}

func (c *Client) sectionKey(ctx context.Context, library string) (string, error) {
	url := c.baseURL + "/library/sections"
	var container struct {
		Directories []struct {
			Key   string `xml:"key,attr"`
			Title string `xml:"title,attr"`
		} `xml:"Directory"`
	}
	if err := c.getXML(ctx, url, &container); err != nil {
		return "", fmt.Errorf("fetch plex sections: %w", err)
	}

	for _, dir := range container.Directories {
		if strings.EqualFold(strings.TrimSpace(dir.Title), strings.TrimSpace(library)) && dir.Key != "" {
			return dir.Key, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrLibraryNotFound, library)
}

func (c *Client) getXML(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("plex request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("plex returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode plex response: %w", err)
	}
	return nil
}
