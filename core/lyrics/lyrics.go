// Package lyrics fetches song lyrics from the lyrics.ovh public API.
package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ShHaWkK/SpootifyCLI/logger"
)

const defaultBaseURL = "https://api.lyrics.ovh/v1"

// ErrNotFound means neither the exact title nor its simplified form
// had lyrics available.
var ErrNotFound = errors.New("lyrics: not found")

// Client looks up lyrics and caches hits, since the same track is often
// requested repeatedly during playback.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *lru.Cache[string, string]
}

func New() *Client {
	cache, _ := lru.New[string, string](256)
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
	}
}

// Fetch returns the lyrics for the given artist and title. Titles that
// miss are retried once with trailing qualifiers stripped, so
// "Song (Live at Wembley)" still finds "Song".
func (c *Client) Fetch(ctx context.Context, artist, title string) (string, error) {
	key := strings.ToLower(artist + "\x00" + title)
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}
	text, err := c.fetchOnce(ctx, artist, title)
	if errors.Is(err, ErrNotFound) {
		if simple := simplifyTitle(title); simple != title {
			logger.Debug("retrying lyrics with simplified title",
				logger.String("title", title), logger.String("simplified", simple))
			text, err = c.fetchOnce(ctx, artist, simple)
		}
	}
	if err != nil {
		return "", err
	}
	c.cache.Add(key, text)
	return text, nil
}

func (c *Client) fetchOnce(ctx context.Context, artist, title string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(artist), url.PathEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("lyrics request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics request: unexpected status %d", resp.StatusCode)
	}
	var body struct {
		Lyrics string `json:"lyrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("lyrics decode: %w", err)
	}
	if strings.TrimSpace(body.Lyrics) == "" {
		return "", ErrNotFound
	}
	return body.Lyrics, nil
}

// simplifyTitle drops parenthesized or bracketed qualifiers and
// anything after a dash, which is where remaster and feature notes
// usually live.
func simplifyTitle(title string) string {
	if i := strings.IndexAny(title, "([-"); i > 0 {
		return strings.TrimSpace(title[:i])
	}
	return strings.TrimSpace(title)
}
