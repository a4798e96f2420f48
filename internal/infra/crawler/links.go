package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// FetchError marks a page that failed to load (non-2xx or transport error).
// The crawl recovers by skipping the page.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// extractLinks pulls anchor hrefs out of the page body, resolves them against
// the page's own URL and keeps only http(s) links whose host equals the seed
// host. Unparsable hrefs are discarded.
func extractLinks(base *url.URL, body string, seedHost string) []string {
	var links []string
	seen := map[string]bool{}

	tok := html.NewTokenizer(strings.NewReader(body))
	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			return links
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := tok.TagName()
		if string(name) != "a" || !hasAttr {
			continue
		}
		for {
			key, val, more := tok.TagAttr()
			if string(key) == "href" {
				if link, ok := resolveLink(base, string(val), seedHost); ok && !seen[link] {
					seen[link] = true
					links = append(links, link)
				}
			}
			if !more {
				break
			}
		}
	}
}

func resolveLink(base *url.URL, href, seedHost string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Hostname() != seedHost {
		return "", false
	}
	u.Fragment = ""
	return u.String(), true
}
