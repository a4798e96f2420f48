package chat

import (
	"fmt"
	"strings"

	"github.com/omariomari2/wvs-102/internal/domain/findings"
	"github.com/omariomari2/wvs-102/internal/domain/scans"
)

// Fallback produces a deterministic rule-based reply from the scan result
// alone. Same inputs always yield the same text; this is the contract callers
// rely on when the completion service is down.
func Fallback(userText string, result *scans.Result) string {
	if result == nil || !result.Status.Terminal() {
		return "The scan for this session has not finished yet. Ask again once the status is completed."
	}
	if result.Status == scans.StatusFailed {
		return fmt.Sprintf("The scan of %s failed before producing results. You can re-submit the scan to try again.", result.URL)
	}

	q := strings.ToLower(userText)
	switch {
	case strings.Contains(q, "critical"):
		return listBySeverity(result, findings.SeverityCritical)
	case strings.Contains(q, "high"):
		return listBySeverity(result, findings.SeverityHigh)
	case strings.Contains(q, "recommend") || strings.Contains(q, "fix") || strings.Contains(q, "remediat"):
		return topRecommendations(result)
	default:
		return fmt.Sprintf(
			"The scan of %s covered %d page(s) and found %d issue(s): %d critical, %d high, %d medium, %d low. Ask about \"critical\" or \"high\" findings, or ask what to fix first.",
			result.URL, result.PagesScanned, result.Summary.Total,
			result.Summary.Critical, result.Summary.High, result.Summary.Medium, result.Summary.Low)
	}
}

func listBySeverity(result *scans.Result, sev findings.Severity) string {
	var titles []string
	for _, f := range result.Findings {
		if f.Severity == sev {
			titles = append(titles, f.Title)
		}
	}
	if len(titles) == 0 {
		return fmt.Sprintf("No %s-severity issues were found on %s.", sev, result.URL)
	}
	return fmt.Sprintf("%d %s-severity issue(s) on %s: %s.", len(titles), sev, result.URL, strings.Join(titles, "; "))
}

func topRecommendations(result *scans.Result) string {
	if len(result.Findings) == 0 {
		return fmt.Sprintf("No issues were found on %s, nothing to fix.", result.URL)
	}

	// highest severity first, original order within a severity
	best := make([]findings.Finding, len(result.Findings))
	copy(best, result.Findings)
	for i := 1; i < len(best); i++ {
		for j := i; j > 0 && best[j].Severity.Rank() > best[j-1].Severity.Rank(); j-- {
			best[j], best[j-1] = best[j-1], best[j]
		}
	}
	if len(best) > 3 {
		best = best[:3]
	}

	var lines []string
	for i, f := range best {
		lines = append(lines, fmt.Sprintf("%d) %s: %s", i+1, f.Title, f.Recommendation))
	}
	return "Start with these: " + strings.Join(lines, " ")
}
