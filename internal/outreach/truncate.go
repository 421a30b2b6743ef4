package outreach

import "unicode/utf8"

const ellipsis = "..."

// sentenceCutRatio is how far into the window a sentence end must be for
// TruncateAtSentence to cut there instead of adding an ellipsis.
const sentenceCutRatio = 0.6

// CharCount counts characters as Unicode code points.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// TruncateAtSentence shortens text to at most maxLength characters. It cuts
// after the last '.' or '?' in the first maxLength characters when that
// punctuation sits at or beyond 60% of maxLength, otherwise it keeps
// maxLength-3 characters and appends "...". Text within the limit is returned
// unchanged. The second result reports whether truncation happened.
func TruncateAtSentence(text string, maxLength int) (string, bool) {
	runes := []rune(text)
	if maxLength <= 0 || len(runes) <= maxLength {
		return text, false
	}

	window := runes[:maxLength]
	cut := lastSentenceEnd(window)
	if cut >= 0 && float64(cut) >= sentenceCutRatio*float64(maxLength) {
		return string(window[:cut+1]), true
	}
	return withEllipsis(window, maxLength), true
}

// HardTruncate keeps maxLength-3 characters and appends "..." when text is
// longer than maxLength. It does not look for sentence boundaries.
func HardTruncate(text string, maxLength int) (string, bool) {
	runes := []rune(text)
	if maxLength <= 0 || len(runes) <= maxLength {
		return text, false
	}
	return withEllipsis(runes, maxLength), true
}

func lastSentenceEnd(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '?' {
			return i
		}
	}
	return -1
}

// withEllipsis fits runes plus "..." into maxLength. Limits too small for an
// ellipsis are cut without one.
func withEllipsis(runes []rune, maxLength int) string {
	if maxLength <= len(ellipsis) {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-len(ellipsis)]) + ellipsis
}
