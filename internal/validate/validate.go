// Package validate holds the input checks applied before an account is
// created. Both functions are pure and never touch the store.
package validate

import "regexp"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email reports whether s looks like local@domain.tld: no whitespace,
// exactly one "@" and at least one "." in the domain part.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Password reports whether s is an acceptable password: at least 8
// characters, at least one ASCII letter and one digit, with a small set of
// symbols permitted alongside.
func Password(s string) bool {
	if len(s) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '@', r == '$', r == '!', r == '%', r == '*', r == '#', r == '?', r == '&':
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}
