package checks

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/omariomari2/wvs-102/internal/domain/findings"
)

// knownLibraries is the fixed table of client-side libraries the battery can
// fingerprint from page text, with the minimum version considered current.
var knownLibraries = []struct {
	name    string
	pattern *regexp.Regexp
	minimum string
}{
	{"jQuery", regexp.MustCompile(`(?i)jquery[-./ ]v?(\d+(?:\.\d+)*)`), "3.5.0"},
	{"Bootstrap", regexp.MustCompile(`(?i)bootstrap[-./ ]v?(\d+(?:\.\d+)*)`), "4.6.0"},
	{"AngularJS", regexp.MustCompile(`(?i)angular(?:js)?[-./ ]v?(\d+(?:\.\d+)*)`), "1.8.0"},
	{"Lodash", regexp.MustCompile(`(?i)lodash(?:\.js)?[-./ ]v?(\d+(?:\.\d+)*)`), "4.17.21"},
	{"Moment.js", regexp.MustCompile(`(?i)moment(?:\.js)?[-./ ]v?(\d+(?:\.\d+)*)`), "2.29.0"},
}

func checkLibraries(p Page) []findings.Finding {
	var out []findings.Finding
	ref := pageRef(p.URL)

	for _, lib := range knownLibraries {
		m := lib.pattern.FindStringSubmatch(p.Body)
		if m == nil {
			continue
		}
		detected := m[1]
		if !versionBelow(detected, lib.minimum) {
			continue
		}
		out = append(out, findings.Finding{
			ID:             "outdated-library-" + strings.ToLower(lib.name) + "-" + ref,
			Category:       findings.CategoryLibrary,
			Severity:       findings.SeverityMedium,
			Title:          "Outdated " + lib.name + " version " + detected,
			Description:    lib.name + " " + detected + " is older than " + lib.minimum + " and has known published vulnerabilities.",
			Recommendation: "Upgrade " + lib.name + " to " + lib.minimum + " or later.",
			Evidence: findings.Evidence{
				Page:     p.URL.String(),
				Library:  lib.name,
				Detected: detected,
				Minimum:  lib.minimum,
			},
		})
	}
	return out
}

// versionBelow compares dotted versions component-wise. Missing components
// count as 0; the first differing component decides; equal versions are not
// below.
func versionBelow(v, min string) bool {
	a := strings.Split(v, ".")
	b := strings.Split(min, ".")
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av, _ = strconv.Atoi(a[i])
		}
		if i < len(b) {
			bv, _ = strconv.Atoi(b[i])
		}
		if av != bv {
			return av < bv
		}
	}
	return false
}
