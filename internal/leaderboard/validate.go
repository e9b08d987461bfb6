package leaderboard

import (
	"fmt"
	"net/http"
	"strings"
)

// Score and username limits.
const (
	MinScore          = 0
	MaxScore          = 999999
	MinUsernameLength = 2
	MaxUsernameLength = 20
)

// Game modes stored with every score.
const (
	ModeWalls = "walls"
	ModeWrap  = "walls-through"
)

// SanitizeUsername trims, upper-cases and drops every character outside
// [A-Z0-9_].
func SanitizeUsername(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, s)
}

// ValidateUsername checks a sanitized username.
func ValidateUsername(s string) error {
	msg := ""
	switch n := len(s); {
	case n == 0:
		msg = "Username is required"
	case n < MinUsernameLength:
		msg = fmt.Sprintf("Username must be at least %d characters", MinUsernameLength)
	case n > MaxUsernameLength:
		msg = fmt.Sprintf("Username must be %d characters or less", MaxUsernameLength)
	default:
		return nil
	}
	return newError(CodeUsernameInvalid, http.StatusBadRequest, msg)
}

// ValidateScore checks the score range.
func ValidateScore(score int) error {
	switch {
	case score < MinScore:
		return newError(CodeScoreInvalid, http.StatusBadRequest, fmt.Sprintf("Score must be at least %d", MinScore))
	case score > MaxScore:
		return newError(CodeScoreInvalid, http.StatusBadRequest, fmt.Sprintf("Score must be at most %d", MaxScore))
	}
	return nil
}

// ValidateMode accepts exactly the stored mode names.
func ValidateMode(mode string) error {
	switch mode {
	case ModeWalls, ModeWrap:
		return nil
	}
	return ValidationError(fmt.Sprintf("Unknown mode %q", mode), map[string]any{
		"field":   "mode",
		"allowed": []string{ModeWalls, ModeWrap},
	})
}
