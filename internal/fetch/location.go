package fetch

import (
	"regexp"
	"strings"
)

var (
	parentheticalRe = regexp.MustCompile(`\s*\(.*?\)\s*`)
	countrySuffixRe = regexp.MustCompile(`(?i),\s*(usa|us|united states)\b.*$`)
	genericTokenRe  = regexp.MustCompile(`(?i)\b(remote|usa|us|anywhere|global|worldwide|wfh|hybrid|flexible)\b`)
)

var genericPhrases = []string{"united states", "work from home"}

var countryOnly = map[string]bool{
	"canada":         true,
	"uk":             true,
	"united kingdom": true,
	"germany":        true,
	"france":         true,
	"australia":      true,
	"india":          true,
	"brazil":         true,
	"mexico":         true,
	"japan":          true,
}

// NormalizeLocation prepares a scraped location for a people search:
// parentheticals and a trailing US country suffix are dropped and at most
// the first two comma-separated parts are kept.
func NormalizeLocation(location string) string {
	if location == "" {
		return ""
	}
	location = parentheticalRe.ReplaceAllString(location, " ")
	location = countrySuffixRe.ReplaceAllString(location, "")

	parts := strings.Split(location, ",")
	if len(parts) >= 2 {
		return strings.TrimSpace(parts[0]) + ", " + strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(location)
}

// ShouldIncludeLocation reports whether location narrows a search. Remote,
// hybrid and similar generic values do not, and neither does a bare country.
func ShouldIncludeLocation(location string) bool {
	lower := strings.ToLower(strings.TrimSpace(location))
	if lower == "" {
		return false
	}
	if genericTokenRe.MatchString(lower) {
		return false
	}
	for _, phrase := range genericPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return !countryOnly[lower]
}
