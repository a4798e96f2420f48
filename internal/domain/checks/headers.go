package checks

import (
	"strings"

	"github.com/omariomari2/wvs-102/internal/domain/findings"
)

// securityHeaders is the fixed table of response headers the battery expects,
// with the severity assigned to their absence.
var securityHeaders = []struct {
	name           string
	severity       findings.Severity
	description    string
	recommendation string
}{
	{
		name:           "Content-Security-Policy",
		severity:       findings.SeverityHigh,
		description:    "Without a Content-Security-Policy the browser will load scripts, styles and frames from any origin, making XSS exploitation far easier.",
		recommendation: "Add a Content-Security-Policy header with a restrictive default-src directive.",
	},
	{
		name:           "Strict-Transport-Security",
		severity:       findings.SeverityHigh,
		description:    "Without HSTS, browsers may still attempt plain-HTTP connections, exposing users to downgrade and stripping attacks.",
		recommendation: "Add Strict-Transport-Security with a max-age of at least six months.",
	},
	{
		name:           "X-Frame-Options",
		severity:       findings.SeverityMedium,
		description:    "The page can be embedded in a frame on an attacker-controlled site, enabling clickjacking.",
		recommendation: "Add X-Frame-Options: DENY or SAMEORIGIN (or a frame-ancestors CSP directive).",
	},
	{
		name:           "X-Content-Type-Options",
		severity:       findings.SeverityMedium,
		description:    "Browsers may MIME-sniff responses, which can turn uploaded files into executable script.",
		recommendation: "Add X-Content-Type-Options: nosniff.",
	},
	{
		name:           "X-XSS-Protection",
		severity:       findings.SeverityLow,
		description:    "Legacy browsers without CSP support get no reflected-XSS filter hint.",
		recommendation: "Add X-XSS-Protection: 1; mode=block for legacy browser coverage.",
	},
	{
		name:           "Referrer-Policy",
		severity:       findings.SeverityLow,
		description:    "Full request URLs may leak to third-party sites via the Referer header.",
		recommendation: "Add Referrer-Policy: strict-origin-when-cross-origin or stricter.",
	},
}

func checkHeaders(p Page) []findings.Finding {
	var out []findings.Finding
	ref := pageRef(p.URL)

	for _, h := range securityHeaders {
		if p.Header.Get(h.name) != "" {
			continue
		}
		out = append(out, findings.Finding{
			ID:             "missing-header-" + strings.ToLower(h.name) + "-" + ref,
			Category:       findings.CategoryHeader,
			Severity:       h.severity,
			Title:          "Missing " + h.name + " header",
			Description:    h.description,
			Recommendation: h.recommendation,
			Evidence:       findings.Evidence{Page: p.URL.String(), Header: h.name},
		})
	}

	// CSP present but without a default-src fallback directive
	if csp := p.Header.Get("Content-Security-Policy"); csp != "" && !strings.Contains(strings.ToLower(csp), "default-src") {
		out = append(out, findings.Finding{
			ID:             "csp-no-default-src-" + ref,
			Category:       findings.CategoryHeader,
			Severity:       findings.SeverityMedium,
			Title:          "Content-Security-Policy lacks default-src",
			Description:    "The CSP has no default-src directive, so any fetch type not covered by an explicit directive is unrestricted.",
			Recommendation: "Add default-src 'self' (or stricter) as the policy fallback.",
			Evidence:       findings.Evidence{Page: p.URL.String(), Header: "Content-Security-Policy"},
		})
	}

	return out
}
