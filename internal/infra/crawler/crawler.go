package crawler

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omariomari2/wvs-102/internal/domain/checks"
	"github.com/omariomari2/wvs-102/internal/domain/findings"
)

const (
	DefaultMaxPages = 10
	DefaultMaxDepth = 2

	defaultFetchTimeout = 10 * time.Second
	maxBodyBytes        = 2 << 20 // cap per page, enough for check heuristics
	userAgent           = "wvs-scanner/1.0"
)

// ProcessFunc inspects one fetched page and returns its findings.
type ProcessFunc func(page checks.Page) []findings.Finding

type Options struct {
	MaxPages     int // successfully processed pages ceiling, default 10
	MaxDepth     int // link-follow depth from the seed, default 2
	FetchTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxPages < 1 {
		o.MaxPages = DefaultMaxPages
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = defaultFetchTimeout
	}
	return o
}

// Crawler walks one site breadth-first, restricted to the seed's hostname.
// Traversal state (queue, visited set) is owned by a single Crawl call and
// never shared across scans.
type Crawler struct {
	client *http.Client
	log    *logrus.Logger
}

func New(log *logrus.Logger) *Crawler {
	if log == nil {
		log = logrus.New()
	}
	return &Crawler{
		client: &http.Client{Timeout: defaultFetchTimeout},
		log:    log,
	}
}

type queueItem struct {
	url   string
	depth int
}

// Crawl fetches pages breadth-first starting at seed, invoking process on
// each successfully fetched page. It returns the concatenated findings and
// the count of pages processed. Fetch failures skip the page and keep the
// crawl going; only a nil seed or an exhausted context ends it early.
func (c *Crawler) Crawl(ctx context.Context, seed *url.URL, opts Options, process ProcessFunc) ([]findings.Finding, int, error) {
	opts = opts.withDefaults()

	queue := []queueItem{{url: seed.String(), depth: 0}}
	enqueued := map[string]bool{seed.String(): true}
	processed := map[string]bool{}

	var all []findings.Finding
	pages := 0

	for len(queue) > 0 && pages < opts.MaxPages {
		if err := ctx.Err(); err != nil {
			return all, pages, err
		}

		item := queue[0]
		queue = queue[1:]
		if processed[item.url] {
			continue
		}

		page, err := c.fetch(ctx, item.url, opts.FetchTimeout)
		if err != nil {
			// skipped page: no finding, not counted toward MaxPages,
			// links not followed
			c.log.WithFields(logrus.Fields{"url": item.url, "error": err}).Debug("page skipped")
			continue
		}

		all = append(all, process(*page)...)
		processed[item.url] = true
		pages++

		if item.depth >= opts.MaxDepth {
			continue
		}
		for _, link := range extractLinks(page.URL, page.Body, seed.Hostname()) {
			if enqueued[link] || processed[link] {
				continue
			}
			enqueued[link] = true
			queue = append(queue, queueItem{url: link, depth: item.depth + 1})
		}
	}

	return all, pages, nil
}

func (c *Crawler) fetch(ctx context.Context, rawURL string, timeout time.Duration) (*checks.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	// resp.Request.URL follows redirects, keeping relative links resolvable
	return &checks.Page{
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(body),
	}, nil
}
