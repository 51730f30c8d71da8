package auth

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// SanitizeString strips HTML and trims whitespace from user-supplied text
// (usernames, display names, room titles, chat messages).
func SanitizeString(input string) string {
	return strings.TrimSpace(policy.Sanitize(input))
}
