package filters

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

var stripPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// StripHTML removes all markup, leaving whitespace where tags were.
func StripHTML(s string) string {
	return stripPolicy.Sanitize(s)
}

// ReadingTime returns the minutes needed to read text, rounded up.
// Markup is ignored.
func ReadingTime(text string) int {
	words := len(strings.Fields(StripHTML(text)))
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
