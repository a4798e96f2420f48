package checks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/omariomari2/wvs-102/internal/domain/findings"
)

// cookieBoundary matches a comma that starts a new cookie: the comma must be
// followed by a name= token. Commas inside attribute values (notably Expires
// dates) are not followed by name= and therefore not split points.
var cookieBoundary = regexp.MustCompile(`,\s*[^\s;,=]+=`)

// splitSetCookie splits a Set-Cookie header value that carries several
// comma-joined cookies into the individual cookie strings.
func splitSetCookie(v string) []string {
	var out []string
	start := 0
	for _, m := range cookieBoundary.FindAllStringIndex(v, -1) {
		part := strings.TrimSpace(v[start:m[0]])
		if part != "" {
			out = append(out, part)
		}
		start = m[0] + 1 // skip the comma, keep the name= token
	}
	if part := strings.TrimSpace(v[start:]); part != "" {
		out = append(out, part)
	}
	return out
}

func checkCookies(p Page) []findings.Finding {
	var out []findings.Finding
	ref := pageRef(p.URL)
	https := p.URL.Scheme == "https"

	idx := 0
	for _, raw := range p.Header.Values("Set-Cookie") {
		for _, cookie := range splitSetCookie(raw) {
			name, attrs := parseCookie(cookie)
			if name == "" {
				idx++
				continue
			}

			if https && !attrs["secure"] {
				out = append(out, cookieFinding(ref, idx, name, "secure", findings.SeverityMedium,
					"Cookie '"+name+"' is set without the Secure attribute",
					"The cookie can be sent over plain HTTP, exposing it to network eavesdroppers.",
					"Add the Secure attribute so the cookie is only transmitted over HTTPS."))
			}
			if !attrs["httponly"] {
				out = append(out, cookieFinding(ref, idx, name, "httponly", findings.SeverityMedium,
					"Cookie '"+name+"' is set without the HttpOnly attribute",
					"Page scripts can read the cookie, so an XSS bug becomes session theft.",
					"Add the HttpOnly attribute to keep the cookie out of reach of JavaScript."))
			}
			if !attrs["samesite"] {
				out = append(out, cookieFinding(ref, idx, name, "samesite", findings.SeverityLow,
					"Cookie '"+name+"' is set without a SameSite attribute",
					"The cookie is attached to cross-site requests, easing CSRF attacks.",
					"Add SameSite=Lax (or Strict) to the cookie."))
			}
			idx++
		}
	}
	return out
}

// parseCookie returns the cookie name and the set of attribute keys present,
// lowercased. Malformed input yields an empty name.
func parseCookie(cookie string) (string, map[string]bool) {
	parts := strings.Split(cookie, ";")
	nv := strings.SplitN(strings.TrimSpace(parts[0]), "=", 2)
	if len(nv) != 2 || nv[0] == "" {
		return "", nil
	}
	attrs := make(map[string]bool, len(parts)-1)
	for _, a := range parts[1:] {
		key := strings.ToLower(strings.TrimSpace(a))
		if eq := strings.IndexByte(key, '='); eq >= 0 {
			key = key[:eq]
		}
		attrs[strings.TrimSpace(key)] = true
	}
	return nv[0], attrs
}

func cookieFinding(ref string, idx int, name, attr string, sev findings.Severity, title, desc, rec string) findings.Finding {
	return findings.Finding{
		ID:             fmt.Sprintf("cookie-%d-%s-%s", idx, attr, ref),
		Category:       findings.CategoryCookie,
		Severity:       sev,
		Title:          title,
		Description:    desc,
		Recommendation: rec,
		Evidence:       findings.Evidence{Cookie: name},
	}
}
