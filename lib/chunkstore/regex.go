package chunkstore

import (
	"regexp"
	"strings"
)

// patterns holds the three compiled regular expressions derived from a
// store's configured delimiters, end marker, and comment markers.
// Built once at store construction time; delimiters never change
// afterward (§4.3).
type patterns struct {
	open  *regexp.Regexp
	slot  *regexp.Regexp
	close *regexp.Regexp
}

// buildPatterns escapes openDelim, closeDelim, chunkEnd, and every
// comment marker individually before composing them into the Open,
// Slot, and Close regular expressions from §4.3. Escaping each piece
// separately (rather than escaping the assembled pattern string) is
// required because the delimiters and markers may themselves contain
// regex metacharacters (e.g. a "$$" chunk-end marker).
func buildPatterns(openDelim, closeDelim, chunkEnd string, commentMarkers []string) *patterns {
	open := regexp.QuoteMeta(openDelim)
	close_ := regexp.QuoteMeta(closeDelim)
	end := regexp.QuoteMeta(chunkEnd)
	comments := commentGroup(commentMarkers)

	openPattern := `^(\s*)(?:` + comments + `)?[ \t]*` + open + `(?:@replace[ \t]+)?(?:@file[ \t]+)?([^\s]+)` + close_ + `=`
	slotPattern := `^(\s*)(?:` + comments + `)?[ \t]*` + open + `(?:@file[ \t]+)?([^\s]+)` + close_ + `\s*$`
	closePattern := `^(?:` + comments + `)?[ \t]*` + end + `\s*$`

	return &patterns{
		open:  regexp.MustCompile(openPattern),
		slot:  regexp.MustCompile(slotPattern),
		close: regexp.MustCompile(closePattern),
	}
}

// commentGroup joins escaped comment markers into a regex alternation
// fragment. An empty marker list yields an empty alternation, which
// Go's regexp (like the grammar this is ported from) treats as
// matching the empty string — comment prefixes become optional and
// effectively absent, per §9's "empty comment_markers" open question.
func commentGroup(markers []string) string {
	if len(markers) == 0 {
		return ""
	}
	escaped := make([]string, len(markers))
	for i, marker := range markers {
		escaped[i] = regexp.QuoteMeta(marker)
	}
	return strings.Join(escaped, "|")
}
