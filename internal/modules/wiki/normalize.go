// Package wiki validates Wikipedia article URLs and fetches their plain text.
package wiki

import (
	"errors"
	"fmt"
	neturl "net/url"
	"strings"
)

// ErrInvalidInput marks URLs that are not valid Wikipedia article URLs.
// A redirect escaping wikipedia.org is reported with this error too: it is a
// validation boundary, not a fetch failure.
var ErrInvalidInput = errors.New("invalid input")

// ErrScrapingFailure marks fetch or extraction failures (network errors,
// oversized responses, redirect storms, pages too thin to summarize).
var ErrScrapingFailure = errors.New("scraping failure")

// NormalizeURL validates a Wikipedia URL and canonicalizes it so that obvious
// duplicates share one cache key. It is idempotent: normalizing a normalized
// URL returns it unchanged.
func NormalizeURL(raw string) (string, error) {
	parsed, err := neturl.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: URL is not valid", ErrInvalidInput)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: URL must start with http:// or https://", ErrInvalidInput)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", fmt.Errorf("%w: URL must include a valid hostname", ErrInvalidInput)
	}
	if host != "wikipedia.org" && !strings.HasSuffix(host, ".wikipedia.org") {
		return "", fmt.Errorf("%w: URL must belong to wikipedia.org", ErrInvalidInput)
	}

	netloc := host
	if port := parsed.Port(); port != "" && port != "80" && port != "443" {
		netloc = host + ":" + port
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if path != "/" && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}

	query := parsed.Query()
	if path == "/w/index.php" || path == "/" {
		if title := query.Get("title"); title != "" {
			path = "/wiki/" + encodeTitle(title)
		} else if path == "/" && parsed.RawQuery != "" {
			return "", fmt.Errorf("%w: URL must point to a Wikipedia article", ErrInvalidInput)
		}
	}

	if !strings.HasPrefix(path, "/wiki/") {
		return "", fmt.Errorf("%w: URL must point to a Wikipedia article", ErrInvalidInput)
	}

	// Queries and fragments are dropped so revisions, alternate views and
	// anchors do not create near-duplicate cache entries.
	return "https://" + netloc + path, nil
}

// encodeTitle percent-encodes an article title for the /wiki/ path, keeping
// ():' readable the way Wikipedia itself renders them.
func encodeTitle(title string) string {
	underscored := strings.ReplaceAll(title, " ", "_")
	escaped := neturl.PathEscape(underscored)
	for raw, enc := range map[string]string{
		"(": "%28",
		")": "%29",
		":": "%3A",
		"'": "%27",
	} {
		escaped = strings.ReplaceAll(escaped, enc, raw)
	}
	return escaped
}
