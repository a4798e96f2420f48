package checks

import (
	"regexp"
	"strings"

	"github.com/omariomari2/wvs-102/internal/domain/findings"
)

var httpResource = regexp.MustCompile(`http://[^\s"'<>\\)]+`)

// sensitiveTokens is the fixed list of path fragments whose presence in page
// text or the URL hints at exposed tooling or configuration.
var sensitiveTokens = []string{
	".git", ".env", "robots.txt", "sitemap.xml",
	"admin", "wp-admin", "phpmyadmin", "backup", "test", "dev",
}

const maxListedResources = 20

func checkMixedContent(p Page) []findings.Finding {
	if p.URL.Scheme != "https" {
		return nil
	}

	seen := make(map[string]bool)
	var resources []string
	for _, m := range httpResource.FindAllString(p.Body, -1) {
		if strings.Contains(m, "localhost") {
			continue
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		if len(resources) < maxListedResources {
			resources = append(resources, m)
		}
	}
	if len(resources) == 0 {
		return nil
	}

	return []findings.Finding{{
		ID:             "mixed-content-" + pageRef(p.URL),
		Category:       findings.CategoryContent,
		Severity:       findings.SeverityHigh,
		Title:          "Mixed content on HTTPS page",
		Description:    "The page references resources over plain HTTP. Browsers block or degrade them, and active mixed content can compromise the whole page.",
		Recommendation: "Load all resources over HTTPS, or use protocol-relative/absolute HTTPS URLs.",
		Evidence:       findings.Evidence{Page: p.URL.String(), Resources: resources},
	}}
}

func checkSensitivePaths(p Page) []findings.Finding {
	haystack := strings.ToLower(p.Body + " " + p.URL.String())

	var matched []string
	for _, tok := range sensitiveTokens {
		if strings.Contains(haystack, tok) {
			matched = append(matched, tok)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	return []findings.Finding{{
		ID:             "sensitive-paths-" + pageRef(p.URL),
		Category:       findings.CategoryFile,
		Severity:       findings.SeverityMedium,
		Title:          "References to potentially sensitive paths",
		Description:    "The page or its URL mentions paths that commonly expose source control data, configuration, or admin interfaces: " + strings.Join(matched, ", ") + ".",
		Recommendation: "Verify these paths are not publicly accessible and remove references that leak internal structure.",
		Evidence:       findings.Evidence{Page: p.URL.String(), Tokens: matched},
	}}
}

func checkForms(p Page) []findings.Finding {
	body := strings.ToLower(p.Body)
	if !strings.Contains(body, "<form") {
		return nil
	}
	if !strings.Contains(body, "<input") && !strings.Contains(body, "<textarea") {
		return nil
	}

	// Heuristic: a form with none of the client-side validation attributes is
	// taken as accepting arbitrary input.
	unvalidated := false
	rest := body
	for {
		start := strings.Index(rest, "<form")
		if start < 0 {
			break
		}
		rest = rest[start:]
		end := strings.Index(rest, "</form>")
		var form string
		if end < 0 {
			form, rest = rest, ""
		} else {
			form, rest = rest[:end], rest[end+len("</form>"):]
		}
		if !strings.Contains(form, "required") &&
			!strings.Contains(form, "pattern") &&
			!strings.Contains(form, "minlength") {
			unvalidated = true
			break
		}
	}
	if !unvalidated {
		return nil
	}

	return []findings.Finding{{
		ID:             "form-no-validation-" + pageRef(p.URL),
		Category:       findings.CategoryXSS,
		Severity:       findings.SeverityMedium,
		Title:          "Form without client-side input validation",
		Description:    "At least one form on the page has inputs but none of the required, pattern or minlength attributes. Client-side validation is not a security boundary, but its absence often correlates with missing server-side validation.",
		Recommendation: "Validate and sanitize all form input on the server; add HTML validation attributes for defense in depth.",
		Evidence:       findings.Evidence{Page: p.URL.String()},
	}}
}
