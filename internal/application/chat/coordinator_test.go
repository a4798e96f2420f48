package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/omariomari2/wvs-102/internal/domain/findings"
	"github.com/omariomari2/wvs-102/internal/domain/scans"
	"github.com/omariomari2/wvs-102/internal/domain/sessions"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.reply, s.err
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func completedResult() *scans.Result {
	fs := []findings.Finding{
		{Title: "Site served over unencrypted HTTP", Severity: findings.SeverityCritical, Recommendation: "Serve over HTTPS."},
		{Title: "Missing Content-Security-Policy header", Severity: findings.SeverityHigh, Recommendation: "Add a CSP."},
		{Title: "Cookie 'sid' is set without a SameSite attribute", Severity: findings.SeverityLow, Recommendation: "Add SameSite=Lax."},
	}
	return &scans.Result{
		ID:           "s1",
		URL:          "https://example.com",
		Status:       scans.StatusCompleted,
		Findings:     fs,
		Summary:      scans.Summarize(fs),
		PagesScanned: 2,
	}
}

func TestReplyUsesCompleter(t *testing.T) {
	c := NewCoordinator(stubCompleter{reply: "model answer"}, quietLog())

	got := c.Reply(context.Background(), "what is wrong?", completedResult(), nil)

	assert.Equal(t, "model answer", got)
}

func TestReplyFallsBackOnError(t *testing.T) {
	c := NewCoordinator(stubCompleter{err: errors.New("upstream 503")}, quietLog())

	got := c.Reply(context.Background(), "what is wrong?", completedResult(), nil)

	assert.Equal(t, Fallback("what is wrong?", completedResult()), got)
}

func TestReplyFallsBackOnEmptyCompletion(t *testing.T) {
	c := NewCoordinator(stubCompleter{reply: "   "}, quietLog())

	got := c.Reply(context.Background(), "hello", completedResult(), nil)

	assert.Equal(t, Fallback("hello", completedResult()), got)
}

func TestReplyWithoutCompleter(t *testing.T) {
	c := NewCoordinator(nil, quietLog())

	got := c.Reply(context.Background(), "hello", nil, nil)

	assert.NotEmpty(t, got)
}

func TestFallbackDeterministic(t *testing.T) {
	res := completedResult()
	for _, q := range []string{"summary please", "any critical issues?", "what should I fix?"} {
		assert.Equal(t, Fallback(q, res), Fallback(q, res), q)
	}
}

func TestFallbackNoResultYet(t *testing.T) {
	got := Fallback("anything", nil)
	assert.Contains(t, got, "not finished")
}

func TestFallbackFailedScan(t *testing.T) {
	got := Fallback("anything", &scans.Result{URL: "https://example.com", Status: scans.StatusFailed})
	assert.Contains(t, got, "failed")
}

func TestFallbackListsCriticalFindings(t *testing.T) {
	got := Fallback("show me the CRITICAL stuff", completedResult())
	assert.Contains(t, got, "Site served over unencrypted HTTP")
}

func TestFallbackNoCriticalFindings(t *testing.T) {
	fs := []findings.Finding{{Title: "Minor", Severity: findings.SeverityLow}}
	res := &scans.Result{URL: "https://example.com", Status: scans.StatusCompleted, Findings: fs, Summary: scans.Summarize(fs)}

	got := Fallback("critical?", res)
	assert.Contains(t, got, "No critical-severity issues")
}

func TestFallbackRecommendationsOrderedBySeverity(t *testing.T) {
	got := Fallback("what should I fix first?", completedResult())
	assert.Contains(t, got, "1) Site served over unencrypted HTTP")
}

func TestFallbackDefaultSummary(t *testing.T) {
	got := Fallback("tell me about the scan", completedResult())
	assert.Contains(t, got, "3 issue(s)")
	assert.Contains(t, got, "1 critical")
}

func TestBuildUserPromptIncludesContext(t *testing.T) {
	history := []sessions.Message{
		{Role: sessions.RoleUser, Content: "earlier question"},
		{Role: sessions.RoleAssistant, Content: "earlier answer"},
	}

	prompt := buildUserPrompt("new question", completedResult(), history)

	assert.Contains(t, prompt, "https://example.com")
	assert.Contains(t, prompt, "Missing Content-Security-Policy header")
	assert.Contains(t, prompt, "earlier question")
	assert.Contains(t, prompt, "User question: new question")
}
