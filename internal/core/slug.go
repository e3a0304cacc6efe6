package core

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultExcerptLength is the excerpt length used when none is given.
const DefaultExcerptLength = 160

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	lower        = cases.Lower(language.Und)
	stripPolicy  = bluemonday.StrictPolicy()
)

// Slugify lower-cases title, strips everything but word characters and
// whitespace, and turns each whitespace run into a single hyphen.
// Slugs are not unique: equal titles give equal slugs.
func Slugify(title string) string {
	s := lower.String(title)
	s = nonWordRe.ReplaceAllString(s, "")
	return whitespaceRe.ReplaceAllString(s, "-")
}

// GenerateExcerpt renders Markdown content to plain text and cuts it to at
// most length runes, appending "..." when it was cut.
func GenerateExcerpt(content string, length int) string {
	if length <= 0 {
		length = DefaultExcerptLength
	}
	text := plainText(content)
	if utf8.RuneCountInString(text) <= length {
		return text
	}
	return string([]rune(text)[:length]) + "..."
}

func plainText(markdown string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return strings.Join(strings.Fields(markdown), " ")
	}
	stripped := html.UnescapeString(stripPolicy.Sanitize(buf.String()))
	return strings.Join(strings.Fields(stripped), " ")
}
