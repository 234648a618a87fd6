package anonID

import (
	"strings"

	"github.com/samborkent/uuidv7"

	"github.com/gjc-app/board-sync/pkg/apperrors"
)

const (
	userPrefix   = "user_"
	playerPrefix = "Player_"
	suffixLength = 4

	legacyRandomMax = 9
)

// NewUserID returns an anonymous user id. uuidv7 is a millisecond timestamp followed by random bits,
// so ids are unique across devices and sort by creation time.
func NewUserID() string {
	return userPrefix + uuidv7.New().String()
}

// NewDocumentID returns a key for a new collection item.
func NewDocumentID() string {
	return uuidv7.New().String()
}

// NewToken returns an unguessable token, used for blob download URLs.
func NewToken() string {
	return uuidv7.New().String()
}

// DefaultPlayerName derives the first-visit display name from the id's trailing characters.
func DefaultPlayerName(userID string) string {
	if len(userID) <= suffixLength {
		return playerPrefix + userID
	}
	return playerPrefix + userID[len(userID)-suffixLength:]
}

// Valid reports whether v is a user id this service issued: the current
// user_<uuidv7> form or the earlier user_<unix ms>_<base36> form.
func Valid(v string) bool {
	return Check(v) == nil
}

// Check returns a Validation error naming why v is not a user id.
func Check(v string) error {
	rest, ok := strings.CutPrefix(v, userPrefix)
	if !ok {
		return apperrors.Validation("checkUserID", "user id %q lacks the %q prefix", v, userPrefix)
	}
	if isUUID(rest) || isLegacy(rest) {
		return nil
	}
	return apperrors.Validation("checkUserID", "user id %q is neither user_<uuid> nor user_<unix ms>_<base36>", v)
}

func isUUID(v string) bool {
	if len(v) != 36 {
		return false
	}
	for i, r := range v {
		switch i {
		case 8, 13, 18, 23:
			if r != '-' {
				return false
			}
		default:
			if !isHex(r) {
				return false
			}
		}
	}
	return true
}

// isLegacy matches <unix ms>_<up to 9 base36 chars>.
func isLegacy(v string) bool {
	millis, random, ok := strings.Cut(v, "_")
	if !ok || millis == "" || random == "" || len(random) > legacyRandomMax {
		return false
	}
	for _, r := range millis {
		if r < '0' || r > '9' {
			return false
		}
	}
	for _, r := range random {
		if (r < '0' || r > '9') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
