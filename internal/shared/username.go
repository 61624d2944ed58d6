package shared

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CanonicalUsername normalizes a login name: NFC form, lowercase, trimmed.
// Usernames are immutable after creation so this runs only on the way in,
// at registration and at login.
func CanonicalUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(username)))
}
