package checks

import (
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"

	"github.com/omariomari2/wvs-102/internal/domain/findings"
)

// Page is one already-fetched page. The battery performs no I/O; every check
// is a pure function of this input, so pages can be checked concurrently.
type Page struct {
	URL        *url.URL
	StatusCode int
	Header     http.Header
	Body       string
}

// Run executes the full check battery against one page. Checks are
// independent; each contributes zero or more findings and none of them fails
// on malformed input.
func Run(p Page) []findings.Finding {
	var out []findings.Finding
	out = append(out, checkTransport(p)...)
	out = append(out, checkHeaders(p)...)
	out = append(out, checkMixedContent(p)...)
	out = append(out, checkCookies(p)...)
	out = append(out, checkSensitivePaths(p)...)
	out = append(out, checkForms(p)...)
	out = append(out, checkCORS(p)...)
	out = append(out, checkLibraries(p)...)
	return out
}

// pageRef keeps finding ids unique across a multi-page scan: the same check
// firing on two pages yields two distinct, stable ids.
func pageRef(u *url.URL) string {
	h := fnv.New32a()
	io.WriteString(h, u.String())
	return fmt.Sprintf("%08x", h.Sum32())
}

func checkTransport(p Page) []findings.Finding {
	if p.URL.Scheme == "https" {
		return nil
	}
	return []findings.Finding{{
		ID:             "insecure-transport-" + pageRef(p.URL),
		Category:       findings.CategorySSL,
		Severity:       findings.SeverityCritical,
		Title:          "Site served over unencrypted HTTP",
		Description:    "The page is delivered without TLS. All traffic, including credentials and cookies, can be read or modified in transit.",
		Recommendation: "Serve the site exclusively over HTTPS and redirect HTTP requests to the HTTPS origin.",
		Evidence:       findings.Evidence{Page: p.URL.String()},
	}}
}

func checkCORS(p Page) []findings.Finding {
	origin := p.Header.Get("Access-Control-Allow-Origin")
	if origin != "*" {
		return nil
	}
	return []findings.Finding{{
		ID:             "cors-wildcard-origin-" + pageRef(p.URL),
		Category:       findings.CategoryCORS,
		Severity:       findings.SeverityHigh,
		Title:          "CORS allows any origin",
		Description:    "Access-Control-Allow-Origin is set to '*', letting any website read responses from this page in the browser.",
		Recommendation: "Restrict Access-Control-Allow-Origin to an explicit allow-list of trusted origins.",
		Evidence:       findings.Evidence{Page: p.URL.String(), Origin: origin},
	}}
}
