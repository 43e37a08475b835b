// Package content holds the text helpers shared by authored entities:
// slugs, plain-text extraction, read time and excerpts.
package content

import (
	"html"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	WordsPerMinute = 200
	ExcerptLength  = 160
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
	blockTags    = strings.NewReplacer("</p>", " ", "<br>", " ", "<br/>", " ", "<br />", " ", "</div>", " ", "</li>", " ", "</h1>", " ", "</h2>", " ", "</h3>", " ")
)

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen, trimming hyphens at both ends.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// PlainText strips markup from markdown/HTML content and normalizes whitespace.
func PlainText(s string) string {
	s = blockTags.Replace(s)
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// WordCount counts whitespace separated words that contain a letter or digit.
func WordCount(s string) int {
	count := 0
	for _, word := range strings.Fields(PlainText(s)) {
		if strings.IndexFunc(word, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
			count++
		}
	}
	return count
}

// ReadTime is ceil(words / 200) minutes.
func ReadTime(s string) int {
	return int(math.Ceil(float64(WordCount(s)) / WordsPerMinute))
}

// Excerpt returns the first ExcerptLength runes of the plain text.
func Excerpt(s string) string {
	text := PlainText(s)
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:ExcerptLength])) + "…"
}

// SanitizeHTML keeps the safe subset of user supplied rich text.
func SanitizeHTML(s string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}

// NormalizeTags trims tags and drops empties and repeats, keeping order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
