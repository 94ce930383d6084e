package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// ContainsMarkup reports whether input holds anything the strict policy
// would strip, such as tags or comments. Plain text like "Tom & Jerry" or
// "a < b" is not markup.
func ContainsMarkup(input string) bool {
	return html.UnescapeString(htmlPolicy.Sanitize(input)) != input
}
