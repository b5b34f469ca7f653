package urlFetcherExtractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	DefaultArticlePrefix = "https://en.wikipedia.org/wiki/"
	DefaultUserAgent     = "wikiPathfinder/1.0 (shortest link path finder)"

	// contentID marks the article body; links before it are navigation.
	contentID  = "mw-content-text"
	wikiPrefix = "/wiki/"
)

type (
	// Filter decides which article titles are worth following.
	Filter interface {
		ShouldCrawl(title string) bool
	}

	// FetchError is returned for responses outside the 2xx range.
	FetchError struct {
		URL    string
		Status int
	}
)

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher: unexpected status %d for %s", e.Status, e.URL)
}

type Config struct {
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 means no limit
	ArticlePrefix     string
	UserAgent         string
}

// HTTPFetcherExtractor fetches wiki pages over HTTP and extracts the article links they contain.
type HTTPFetcherExtractor struct {
	client        *http.Client
	limiter       *rate.Limiter
	filter        Filter
	articlePrefix string
	userAgent     string
}

func NewHTTPFetcherExtractor(cfg Config, filter Filter) HTTPFetcherExtractor {
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	if cfg.ArticlePrefix == "" {
		cfg.ArticlePrefix = DefaultArticlePrefix
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return HTTPFetcherExtractor{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:       rate.NewLimiter(limit, burst),
		filter:        filter,
		articlePrefix: cfg.ArticlePrefix,
		userAgent:     cfg.UserAgent,
	}
}

// Links fetches node and returns the article links of its content.
func (fe HTTPFetcherExtractor) Links(ctx context.Context, node string) ([]string, error) {
	pageURL, err := url.Parse(node)
	if err != nil {
		return nil, fmt.Errorf("fetcher: invalid url %q: %w", node, err)
	}

	body, err := fe.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return fe.Extract(pageURL, body)
}

func (fe HTTPFetcherExtractor) Fetch(ctx context.Context, pageURL *url.URL) (io.ReadCloser, error) {
	if err := fe.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fe.userAgent)

	resp, err := fe.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &FetchError{URL: pageURL.String(), Status: resp.StatusCode}
	}
	return resp.Body, nil
}

// Extract collects the /wiki/ links that follow the content region of the page.
// A page without a content region has no links.
func (fe HTTPFetcherExtractor) Extract(pageURL *url.URL, contents io.Reader) ([]string, error) {
	var links []string
	seen := make(map[string]struct{})
	inContent := false

	z := html.NewTokenizer(contents)
	for {
		tt := z.Next()

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			return links, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := z.Token()
			if !inContent {
				inContent = token.Data == "div" && attr(token, "id") == contentID
				continue
			}
			if token.Data != "a" {
				continue
			}

			link, ok := fe.articleLink(pageURL, attr(token, "href"))
			if !ok {
				continue
			}
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
	}
}

func (fe HTTPFetcherExtractor) articleLink(pageURL *url.URL, href string) (string, bool) {
	if !strings.HasPrefix(href, wikiPrefix) {
		return "", false
	}
	title := strings.TrimPrefix(href, wikiPrefix)
	if i := strings.IndexAny(title, "#?"); i >= 0 {
		title = title[:i]
	}
	if fe.filter != nil && !fe.filter.ShouldCrawl(title) {
		return "", false
	}
	if title == "" {
		return "", false
	}
	return pageURL.Scheme + "://" + pageURL.Host + wikiPrefix + title, true
}

func attr(token html.Token, key string) string {
	for _, a := range token.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
