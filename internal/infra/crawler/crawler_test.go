package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omariomari2/wvs-102/internal/domain/checks"
	"github.com/omariomari2/wvs-102/internal/domain/findings"
)

// testSite serves a small fixed link graph and records every fetch.
type testSite struct {
	mu      sync.Mutex
	fetches map[string]int
	pages   map[string]string
}

func newTestSite(pages map[string]string) *testSite {
	return &testSite{fetches: map[string]int{}, pages: pages}
}

func (s *testSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.fetches[r.URL.Path]++
	s.mu.Unlock()

	body, ok := s.pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, body)
}

func (s *testSite) fetchCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[path]
}

func countPages(visited *[]string) ProcessFunc {
	return func(p checks.Page) []findings.Finding {
		*visited = append(*visited, p.URL.Path)
		return []findings.Finding{{ID: "probe-" + p.URL.Path}}
	}
}

func crawlSite(t *testing.T, site *testSite, opts Options) ([]findings.Finding, int, []string) {
	t.Helper()
	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)

	seed, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)

	var visited []string
	found, pages, err := New(nil).Crawl(context.Background(), seed, opts, countPages(&visited))
	require.NoError(t, err)
	return found, pages, visited
}

func TestCrawlFollowsSameHostLinks(t *testing.T) {
	site := newTestSite(map[string]string{
		"/":  `<a href="/a">a</a> <a href="/b">b</a> <a href="https://elsewhere.example.com/x">off-site</a>`,
		"/a": `ok`,
		"/b": `ok`,
	})

	found, pages, visited := crawlSite(t, site, Options{MaxPages: 10, MaxDepth: 2})

	assert.Equal(t, 3, pages)
	assert.Len(t, found, 3)
	assert.ElementsMatch(t, []string{"/", "/a", "/b"}, visited)
}

func TestCrawlTerminatesOnCyclicGraph(t *testing.T) {
	site := newTestSite(map[string]string{
		"/":  `<a href="/a">a</a>`,
		"/a": `<a href="/">home</a> <a href="/a">self</a>`,
	})

	_, pages, _ := crawlSite(t, site, Options{MaxPages: 10, MaxDepth: 5})

	assert.Equal(t, 2, pages)
	// each distinct URL fetched at most once
	assert.Equal(t, 1, site.fetchCount("/"))
	assert.Equal(t, 1, site.fetchCount("/a"))
}

func TestCrawlHonorsMaxPages(t *testing.T) {
	pages := map[string]string{
		"/": `<a href="/p1">1</a><a href="/p2">2</a><a href="/p3">3</a><a href="/p4">4</a>`,
	}
	for i := 1; i <= 4; i++ {
		pages[fmt.Sprintf("/p%d", i)] = "leaf"
	}
	site := newTestSite(pages)

	_, processed, _ := crawlSite(t, site, Options{MaxPages: 2, MaxDepth: 2})

	assert.Equal(t, 2, processed)
}

func TestCrawlHonorsMaxDepth(t *testing.T) {
	site := newTestSite(map[string]string{
		"/":      `<a href="/d1">1</a>`,
		"/d1":    `<a href="/d2">2</a>`,
		"/d2":    `<a href="/d3">3</a>`,
		"/d3":    `never`,
	})

	// a page first discovered at depth == maxDepth is processed but its
	// links are not followed
	_, pages, visited := crawlSite(t, site, Options{MaxPages: 10, MaxDepth: 1})

	assert.Equal(t, 2, pages)
	assert.ElementsMatch(t, []string{"/", "/d1"}, visited)
	assert.Equal(t, 0, site.fetchCount("/d2"))
}

func TestCrawlSkipsFailedPages(t *testing.T) {
	site := newTestSite(map[string]string{
		"/":   `<a href="/missing">gone</a> <a href="/ok">ok</a>`,
		"/ok": `fine`,
	})

	found, pages, visited := crawlSite(t, site, Options{MaxPages: 10, MaxDepth: 2})

	// /missing 404s: skipped, no finding, not counted toward MaxPages
	assert.Equal(t, 2, pages)
	assert.Len(t, found, 2)
	assert.ElementsMatch(t, []string{"/", "/ok"}, visited)
}

func TestCrawlUnreachableSeed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	seed, err := url.Parse(srv.URL)
	require.NoError(t, err)

	found, pages, err := New(nil).Crawl(context.Background(), seed, Options{}, func(checks.Page) []findings.Finding { return nil })
	require.NoError(t, err)
	assert.Zero(t, pages)
	assert.Empty(t, found)
}

func TestExtractLinks(t *testing.T) {
	base, _ := url.Parse("https://example.com/dir/page")
	body := `
<a href="/abs">abs</a>
<a href="rel">rel</a>
<a href="#frag">frag</a>
<a href="mailto:x@example.com">mail</a>
<a href="https://other.com/x">other</a>
<a href="https://example.com/dup">dup</a>
<a href="https://example.com/dup">dup</a>`

	links := extractLinks(base, body, "example.com")

	assert.ElementsMatch(t, []string{
		"https://example.com/abs",
		"https://example.com/dir/rel",
		"https://example.com/dup",
	}, links)
}
