package user

import (
	"regexp"
	"strings"
)

// Messages surfaced verbatim to clients on 400s.
const (
	MsgInvalidName     = "Invalid Name syntax"
	MsgInvalidPassword = "Password must contain at least 1 digit, 1 special character, 1 character and length between 8-15"
)

// A name is acceptable when it contains a run of at least three letters
// anywhere in the string.
var nameRe = regexp.MustCompile(`[A-Za-z]{3,}`)

func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

const passwordSpecials = "!@#$%^&*?>< "

// ValidPassword enforces the password policy: 8-15 characters drawn only from
// letters, digits and the special set above, with at least one of each of
// digit, letter and special. RE2 has no lookaheads, so the conjunction is
// checked with an explicit scan instead of one regexp.
func ValidPassword(password string) bool {
	if len(password) < 8 || len(password) > 15 {
		return false
	}

	var hasDigit, hasLetter, hasSpecial bool

	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		default:
			// anything outside the allowed alphabet rejects the whole password
			return false
		}
	}

	return hasDigit && hasLetter && hasSpecial
}
