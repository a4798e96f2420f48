package scans

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/omariomari2/wvs-102/internal/domain/checks"
	"github.com/omariomari2/wvs-102/internal/domain/findings"
	domain "github.com/omariomari2/wvs-102/internal/domain/scans"
	"github.com/omariomari2/wvs-102/internal/infra/crawler"
)

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// PageCrawler port so the orchestrator can be tested without network I/O.
type PageCrawler interface {
	Crawl(ctx context.Context, seed *url.URL, opts crawler.Options, process crawler.ProcessFunc) ([]findings.Finding, int, error)
}

// Service drives one crawl to completion and folds the outcome into a
// terminal scan result. It never returns an error: every failure along the
// way becomes a failed result carrying the original URL.
type Service struct {
	Crawler PageCrawler
	Clock   Clock
	Log     *logrus.Logger
}

// Run executes a full scan of rawURL and always produces a terminal result.
func (s *Service) Run(ctx context.Context, rawURL string, opts crawler.Options) (res *domain.Result) {
	res = &domain.Result{
		ID:        domain.ScanID(uuid.New().String()),
		URL:       rawURL,
		StartedAt: s.Clock.Now(),
		Status:    domain.StatusFailed,
	}

	defer func() {
		if r := recover(); r != nil {
			s.Log.WithField("url", rawURL).Errorf("scan panic: %v", r)
			res.URL = rawURL
			res.Status = domain.StatusFailed
			res.Findings = nil
			res.Summary = domain.SeverityCounts{}
		}
	}()

	normalized, err := NormalizeTarget(rawURL)
	if err != nil {
		s.Log.WithFields(logrus.Fields{"url": rawURL, "error": err}).Warn("scan target rejected")
		return res
	}
	seed, err := url.Parse(normalized)
	if err != nil {
		return res
	}

	found, pages, err := s.Crawler.Crawl(ctx, seed, opts, checks.Run)
	if err != nil {
		s.Log.WithFields(logrus.Fields{"url": normalized, "error": err}).Warn("crawl aborted")
		return res
	}
	if pages == 0 {
		// target itself never loaded
		s.Log.WithField("url", normalized).Warn("target unreachable")
		return res
	}

	res.URL = normalized
	res.Status = domain.StatusCompleted
	res.Findings = found
	res.Summary = domain.Summarize(found)
	res.PagesScanned = pages

	s.Log.WithFields(logrus.Fields{
		"url":      normalized,
		"pages":    pages,
		"findings": res.Summary.Total,
	}).Info("scan completed")
	return res
}

// NormalizeTarget normalizes a raw target URL: scheme defaults to https, one
// trailing slash is stripped. Normalization is idempotent.
func NormalizeTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("missing host")
	}
	out := u.String()
	if strings.HasSuffix(out, "/") && !strings.HasSuffix(out, "://") {
		out = out[:len(out)-1]
	}
	return out, nil
}
