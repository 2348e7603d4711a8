package sam

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.UGCPolicy()

// HTMLToText strips markup and collapses whitespace. Input that fails to
// parse as HTML is returned cleaned but otherwise as-is.
func HTMLToText(html string) string {
	safe := sanitizer.Sanitize(html)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(safe))
	if err != nil {
		return cleanText(safe)
	}
	return cleanText(doc.Text())
}

// cleanText collapses runs of whitespace into single spaces and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
