package chat

import (
	"fmt"
	"strings"

	"github.com/omariomari2/wvs-102/internal/domain/scans"
	"github.com/omariomari2/wvs-102/internal/domain/sessions"
)

const systemPrompt = `You are a web security assistant embedded in a vulnerability scanner.
Answer questions about the scan results provided in the context. Be concise and practical.
Explain findings in plain language, reference finding titles when relevant, and give
actionable remediation advice. If the user asks about something outside the scan results,
say the scan does not cover it.`

// transcriptTail bounds how much chat history is replayed to the model.
const transcriptTail = 10

// buildUserPrompt assembles the context payload: scan summary, enumerated
// findings and the trailing chat transcript, followed by the user's question.
func buildUserPrompt(userText string, result *scans.Result, history []sessions.Message) string {
	var b strings.Builder

	if result == nil {
		b.WriteString("No scan result is available yet for this session.\n")
	} else {
		fmt.Fprintf(&b, "Scan of %s (status: %s, pages scanned: %d)\n", result.URL, result.Status, result.PagesScanned)
		fmt.Fprintf(&b, "Summary: %d total findings (%d critical, %d high, %d medium, %d low)\n",
			result.Summary.Total, result.Summary.Critical, result.Summary.High,
			result.Summary.Medium, result.Summary.Low)
		b.WriteString("Findings:\n")
		for i, f := range result.Findings {
			fmt.Fprintf(&b, "%d. [%s/%s] %s — %s\n", i+1, f.Severity, f.Category, f.Title, f.Recommendation)
		}
	}

	tail := history
	if len(tail) > transcriptTail {
		tail = tail[len(tail)-transcriptTail:]
	}
	if len(tail) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, m := range tail {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}

	b.WriteString("\nUser question: ")
	b.WriteString(userText)
	return b.String()
}
