package meetings

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// maxIDLength matches the width of meetings.id.
const maxIDLength = 100

// idDisallowed matches everything a meeting ID may not contain.
var idDisallowed = regexp.MustCompile(`[^\w -]`)

// CleanID normalizes a user-typed custom meeting ID the same way the form
// does while typing: anything outside letters, digits, underscore, hyphen
// and space is dropped, then spaces become hyphens.
func CleanID(raw string) string {
	id := idDisallowed.ReplaceAllString(raw, "")
	id = strings.ReplaceAll(id, " ", "-")
	if len(id) > maxIDLength {
		id = id[:maxIDLength]
	}
	return id
}

// generateID returns the first n hex characters of a random UUID.
func generateID(n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(hex) {
		n = len(hex)
	}
	return hex[:n]
}

// newDraftID returns an opaque key for a creation draft.
func newDraftID() string {
	return uuid.NewString()
}
