package urlFetcherExtractor

import (
	"context"
	"net/url"
	"strings"
)

// IsReachableArticle reports whether rawURL is an article address and the page answers.
func (fe HTTPFetcherExtractor) IsReachableArticle(ctx context.Context, rawURL string) bool {
	if !strings.HasPrefix(rawURL, fe.articlePrefix) || len(rawURL) == len(fe.articlePrefix) {
		return false
	}
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	body, err := fe.Fetch(ctx, pageURL)
	if err != nil {
		return false
	}
	body.Close()
	return true
}
