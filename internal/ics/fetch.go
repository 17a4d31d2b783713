package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"athletics/internal/apperr"
	appLog "athletics/internal/log"
)

const (
	DefaultFetchTimeout = 15 * time.Second

	// maxFeedBytes is the largest feed accepted. Larger feeds fail rather
	// than being cut short.
	maxFeedBytes = 16 << 20
)

// FetchResult contains the outcome of fetching a feed.
type FetchResult struct {
	URL       string
	Body      []byte
	FromCache bool // true if the server answered 304 and the cached body was reused
}

// cacheEntry holds HTTP cache metadata for a single feed URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads calendar feeds with conditional GET (ETag /
// Last-Modified) backed by a disk cache.
//
// The cache only ever serves a body the server confirmed as unchanged. A
// network error or non-2xx status always fails the fetch.
type Fetcher struct {
	client   *http.Client
	cacheDir string
	maxBytes int64
}

// NewFetcher creates a Fetcher. cacheDir holds one subdirectory per feed URL;
// an empty cacheDir disables caching. A non-positive timeout means
// DefaultFetchTimeout.
func NewFetcher(cacheDir string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
		maxBytes: maxFeedBytes,
	}
}

// Fetch downloads feedURL. Failures are apperr errors: ErrConfig for an
// unusable URL and ErrCommunication for anything that went wrong on the wire.
// No error message carries the feed URL itself.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (FetchResult, error) {
	if feedURL == "" {
		return FetchResult{}, apperr.New(apperr.ErrConfig, "no iCal URL configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return FetchResult{}, apperr.FromErr(apperr.ErrConfig, "invalid iCal URL", withoutURL(err), apperr.Details{"url": redactURL(feedURL)})
	}
	req.Header.Set("Accept", "text/calendar, */*;q=0.5")

	cachePath := f.cachePathForURL(feedURL)
	var meta cacheEntry
	var cachedBody []byte
	if cachePath != "" {
		meta, _ = f.loadCacheMeta(cachePath)
		cachedBody, _ = f.loadCacheBody(cachePath)
		if len(cachedBody) > 0 {
			if meta.ETag != "" {
				req.Header.Set("If-None-Match", meta.ETag)
			}
			if meta.LastModified != "" {
				req.Header.Set("If-Modified-Since", meta.LastModified)
			}
		}
	}

	appLog.Debug("ics fetch start", "url", redactURL(feedURL))

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, apperr.FromErr(apperr.ErrCommunication, "failed to fetch iCal feed", withoutURL(err), apperr.Details{"url": redactURL(feedURL)})
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && len(cachedBody) > 0:
		appLog.Info("ics fetch not modified; using cache", "url", redactURL(feedURL))
		return FetchResult{URL: feedURL, Body: cachedBody, FromCache: true}, nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
		if err != nil {
			return FetchResult{}, apperr.FromErr(apperr.ErrCommunication, "failed to read iCal feed", withoutURL(err), apperr.Details{"url": redactURL(feedURL)})
		}
		if int64(len(body)) > f.maxBytes {
			// A truncated feed would wipe the games past the cut.
			return FetchResult{}, apperr.FromErr(apperr.ErrCommunication,
				fmt.Sprintf("iCal feed exceeds %d bytes", f.maxBytes), nil,
				apperr.Details{"url": redactURL(feedURL)})
		}

		if cachePath != "" {
			newMeta := cacheEntry{
				URL:          feedURL,
				ETag:         resp.Header.Get("ETag"),
				LastModified: resp.Header.Get("Last-Modified"),
			}
			if err := f.saveCache(cachePath, newMeta, body); err != nil {
				appLog.Error("ics cache save failed", err, "url", redactURL(feedURL))
			}
		}

		appLog.Info("ics fetch success", "url", redactURL(feedURL), "status", resp.StatusCode, "bytes", len(body))
		return FetchResult{URL: feedURL, Body: body}, nil

	default:
		return FetchResult{}, apperr.FromErr(apperr.ErrCommunication,
			fmt.Sprintf("failed to fetch iCal feed: HTTP %d", resp.StatusCode),
			errors.New(resp.Status),
			apperr.Details{"url": redactURL(feedURL), "status": resp.StatusCode})
	}
}

func (f *Fetcher) cachePathForURL(url string) string {
	if f.cacheDir == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *Fetcher) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.ics"))
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return err
	}

	// Body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.ics"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// withoutURL drops the request URL that net/http puts in its errors, keeping
// only the underlying cause.
func withoutURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// redactURL keeps only the scheme and host of a feed URL for logging.
// Calendar share links often carry a private token in the path or query.
//
//	https://example.com/path/to/private.ics?token=abcd -> https://example.com/...(redacted)
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := -1
	for idx := 0; idx+2 < len(u); idx++ {
		if u[idx:idx+3] == "://" {
			i = idx + 3
			break
		}
	}
	if i == -1 {
		return "ics://...(redacted)"
	}

	j := i
	for j < len(u) && u[j] != '/' && u[j] != '?' {
		j++
	}
	return u[:j] + redactedSuffix
}
