package processor

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	durationPattern   = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)
	unsafeCharPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ParseDuration converts an ISO-8601 duration token ("PT4M13S") to seconds.
// Empty or malformed tokens yield 0, never an error.
func ParseDuration(token string) int {
	m := durationPattern.FindStringSubmatch(token)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*3600 + minutes*60 + seconds
}

// Sanitize strips characters that break single-cell CSV storage (emoji,
// punctuation, newlines), collapses whitespace runs and trims the ends. It
// keeps letters and digits in any script, underscore and whitespace.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = unsafeCharPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
