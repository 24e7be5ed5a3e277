package validation

import "github.com/microcosm-cc/bluemonday"

// bodyPolicy allows the formatting a rich-text editor produces and strips
// scripts, event handlers, iframes and javascript: URLs.
var bodyPolicy = bluemonday.UGCPolicy()

// SanitizeHTML returns body reduced to the tags allowed in post content.
func SanitizeHTML(body string) string {
	return bodyPolicy.Sanitize(body)
}
