package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/jaytaylor/html2text"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// StripHTML converts markup to plain text: script/style blocks dropped
// with their contents, tags removed, entities decoded, runs of
// whitespace collapsed to single spaces.
func StripHTML(markup string) string {
	text, err := html2text.FromString(markup, html2text.Options{
		OmitLinks: true,
		TextOnly:  true,
	})
	if err != nil {
		text = stripTagsFallback(markup)
	}
	return CollapseWhitespace(text)
}

// stripTagsFallback is a best-effort regex strip for markup the HTML
// parser rejects.
func stripTagsFallback(markup string) string {
	s := scriptBlockRe.ReplaceAllString(markup, " ")
	s = styleBlockRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	return html.UnescapeString(s)
}

// CollapseWhitespace reduces all whitespace runs to single spaces and
// trims the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
