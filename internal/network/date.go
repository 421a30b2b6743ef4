package network

import (
	"strings"
	"time"
)

// UnknownDate stands in for a missing connection date.
const UnknownDate = "Unknown"

var dateLayouts = []string{
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 02, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate converts an export date to YYYY-MM-DD. Empty input becomes
// UnknownDate and unrecognized input is returned unchanged.
func ParseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
