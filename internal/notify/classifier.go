package notify

import "regexp"

var uidPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// LooksLikeUID reports whether an assignee reference string is a platform
// identifier rather than a display name or email. Identifiers are opaque
// url-safe strings of at least 20 characters; names contain spaces or
// punctuation and emails contain '@', both of which fail the character
// class.
func LooksLikeUID(s string) bool {
	return len(s) >= 20 && uidPattern.MatchString(s)
}
