package wiki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	"github.com/wikisum/core/internal/config"
	"github.com/wikisum/core/internal/pkg/textutil"
	"go.uber.org/zap"
)

// Fetcher retrieves Wikipedia article text over HTTP.
// Redirects are followed manually so every hop is re-validated through
// NormalizeURL before it is fetched.
type Fetcher struct {
	cfg    config.WikipediaConfig
	client *http.Client
	logger *zap.Logger
}

func NewFetcher(cfg config.WikipediaConfig, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.FetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// FetchArticle downloads a normalized Wikipedia URL and extracts the main
// article text. Returns ErrInvalidInput when a redirect escapes wikipedia.org
// and ErrScrapingFailure for network, size and content problems.
func (f *Fetcher) FetchArticle(ctx context.Context, url string) (string, error) {
	html, err := f.fetchHTML(ctx, url)
	if err != nil {
		return "", err
	}

	text, err := ExtractArticleText(html)
	if err != nil {
		return "", err
	}

	if words := textutil.WordCount(text); words < f.cfg.MinArticleWords {
		f.logger.Warn("extracted text too short",
			zap.Int("words", words),
			zap.String("url", url),
		)
		return "", fmt.Errorf("%w: could not extract enough article text to summarize", ErrScrapingFailure)
	}

	return text, nil
}

func (f *Fetcher) fetchHTML(ctx context.Context, url string) (string, error) {
	currentURL := url
	for hop := 0; hop <= f.cfg.MaxRedirects; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, currentURL, nil)
		if err != nil {
			return "", fmt.Errorf("%w: build request: %v", ErrScrapingFailure, err)
		}
		req.Header.Set("User-Agent", f.cfg.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			f.logger.Warn("wikipedia fetch failed", zap.String("url", currentURL), zap.Error(err))
			return "", fmt.Errorf("%w: failed to fetch wikipedia content", ErrScrapingFailure)
		}

		if isRedirect(resp.StatusCode) {
			resp.Body.Close()
			location := resp.Header.Get("Location")
			if location == "" {
				return "", fmt.Errorf("%w: redirect response missing Location header", ErrScrapingFailure)
			}
			next, err := resolveRedirect(currentURL, location)
			if err != nil {
				return "", err
			}
			currentURL = next
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return "", fmt.Errorf("%w: wikipedia returned status %d", ErrScrapingFailure, resp.StatusCode)
		}

		body, err := readLimited(resp.Body, f.cfg.MaxContentBytes)
		resp.Body.Close()
		if err != nil {
			return "", err
		}
		return body, nil
	}

	return "", fmt.Errorf("%w: too many redirects when fetching wikipedia content", ErrScrapingFailure)
}

// resolveRedirect resolves the Location header against the current URL and
// pushes the target back through normalization, so a hop off wikipedia.org
// surfaces as ErrInvalidInput.
func resolveRedirect(current, location string) (string, error) {
	base, err := neturl.Parse(current)
	if err != nil {
		return "", fmt.Errorf("%w: invalid redirect base", ErrScrapingFailure)
	}
	ref, err := neturl.Parse(location)
	if err != nil {
		return "", fmt.Errorf("%w: invalid redirect target", ErrScrapingFailure)
	}
	return NormalizeURL(base.ResolveReference(ref).String())
}

// readLimited streams the body counting bytes, aborting as soon as the ceiling
// is crossed rather than after the download completes.
func readLimited(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		return "", fmt.Errorf("%w: invalid max content size configuration", ErrScrapingFailure)
	}

	var sb strings.Builder
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > maxBytes {
				return "", fmt.Errorf("%w: wikipedia content exceeded the maximum allowed size", ErrScrapingFailure)
			}
			sb.Write(buf[:n])
		}
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: failed to read wikipedia content", ErrScrapingFailure)
		}
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
