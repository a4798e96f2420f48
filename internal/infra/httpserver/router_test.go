package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appchat "github.com/omariomari2/wvs-102/internal/application/chat"
	appscans "github.com/omariomari2/wvs-102/internal/application/scans"
	appsessions "github.com/omariomari2/wvs-102/internal/application/sessions"
	"github.com/omariomari2/wvs-102/internal/domain/findings"
	"github.com/omariomari2/wvs-102/internal/infra/crawler"
	"github.com/omariomari2/wvs-102/internal/infra/store/memory"
)

type stubCrawler struct{}

func (stubCrawler) Crawl(ctx context.Context, seed *url.URL, opts crawler.Options, process crawler.ProcessFunc) ([]findings.Finding, int, error) {
	return []findings.Finding{{ID: "f1", Severity: findings.SeverityHigh, Title: "Missing Content-Security-Policy header"}}, 1, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	sessionsSvc := appsessions.NewService(memory.New(), appchat.NewCoordinator(nil, log), nil)
	scansSvc := &appscans.Service{Crawler: stubCrawler{}, Clock: appscans.SystemClock{}, Log: log}
	return NewRouter(sessionsSvc, scansSvc, crawler.Options{}, log)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestScanMissingURL(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/scan", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "url is required")
}

func TestScanLocalhostRejected(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/scan", `{"url":"http://localhost:8080"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanInitiatedAndResultArrives(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/scan", `{"url":"example.com"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"scanId":"default"`)
	assert.Contains(t, w.Body.String(), `"url":"https://example.com"`)
	assert.Contains(t, w.Body.String(), `"status":"initiated"`)

	// the background scan posts its terminal result into the session
	assert.Eventually(t, func() bool {
		s := doJSON(t, h, http.MethodGet, "/api/scan/default/status", "")
		return s.Code == http.StatusOK && strings.Contains(s.Body.String(), `"status":"completed"`)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStatusUnknownSession(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodGet, "/api/scan/ghost/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusShape(t *testing.T) {
	h := newTestRouter(t)

	doJSON(t, h, http.MethodPost, "/api/scan", `{"url":"example.com","sessionId":"s-1"}`)

	w := doJSON(t, h, http.MethodGet, "/api/scan/s-1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"scanId":"s-1"`)
	assert.Contains(t, body, `"chatHistory":[]`)
	assert.Contains(t, body, `"createdAt"`)
	assert.Contains(t, body, `"lastActivity"`)
}

func TestChatUnknownSession(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/chat/ghost", `{"message":"hi"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodGet, "/api/chat/ghost/history", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatMissingMessage(t *testing.T) {
	h := newTestRouter(t)

	doJSON(t, h, http.MethodPost, "/api/scan", `{"url":"example.com"}`)

	w := doJSON(t, h, http.MethodPost, "/api/chat/default", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatRoundTrip(t *testing.T) {
	h := newTestRouter(t)

	doJSON(t, h, http.MethodPost, "/api/scan", `{"url":"example.com"}`)

	w := doJSON(t, h, http.MethodPost, "/api/chat/default", `{"message":"how bad is it?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message"`)
	assert.Contains(t, w.Body.String(), `"messageId"`)

	hist := doJSON(t, h, http.MethodGet, "/api/chat/default/history", "")
	require.Equal(t, http.StatusOK, hist.Code)
	assert.Contains(t, hist.Body.String(), `"how bad is it?"`)
	assert.Contains(t, hist.Body.String(), `"assistant"`)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"timestamp"`)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t)

	r := httptest.NewRequest(http.MethodOptions, "/api/scan", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Less(t, w.Code, 300)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSOnResponses(t *testing.T) {
	h := newTestRouter(t)

	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	r.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
