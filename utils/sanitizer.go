package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy strips all markup from user input
	StrictPolicy *bluemonday.Policy
	// NotesPolicy allows the limited rich text used in revision notes
	NotesPolicy *bluemonday.Policy
)

func init() {
	StrictPolicy = bluemonday.StrictPolicy()

	NotesPolicy = bluemonday.UGCPolicy()
	NotesPolicy.AllowElements("p", "br", "span", "strong", "em", "u", "s", "code", "pre")
	NotesPolicy.AllowElements("ul", "ol", "li", "blockquote")
	NotesPolicy.AllowAttrs("href").OnElements("a")
	NotesPolicy.RequireParseableURLs(true)
	NotesPolicy.AllowURLSchemes("http", "https")
}

// SanitizeNotes sanitizes topic notes, keeping only the allowed rich text
func SanitizeNotes(notes string) string {
	return strings.TrimSpace(NotesPolicy.Sanitize(notes))
}

// StripHTML removes all markup from content
func StripHTML(content string) string {
	return strings.TrimSpace(StrictPolicy.Sanitize(content))
}
