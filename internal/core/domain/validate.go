package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// EmailPattern is the email shape enforced both here and by the clients
// table CHECK constraint (matched case-insensitively).
const EmailPattern = `^[A-Za-z0-9._+%-]+@[A-Za-z0-9.-]+[.][A-Za-z]+$`

const (
	MaxNameLength  = 40
	MaxEmailLength = 320
)

var emailRe = regexp.MustCompile(`(?i)` + EmailPattern)

// ValidEmail reports whether s has the superficial shape of an email address.
func ValidEmail(s string) bool {
	return len(s) <= MaxEmailLength && emailRe.MatchString(s)
}

// ValidName reports whether s is acceptable as a name or surname.
func ValidName(s string) bool {
	n := utf8.RuneCountInString(s)
	return n > 0 && n <= MaxNameLength && strings.TrimSpace(s) != ""
}

// ParsePhoneNumber coerces a textual phone number to its integer value.
// Surrounding whitespace and a single leading '+' are accepted.
func ParsePhoneNumber(s string) (int64, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(s), "+")
	if digits == "" {
		return 0, fmt.Errorf("parse phone %q: %w", s, ErrInvalidPhone)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("parse phone %q: %w", s, ErrInvalidPhone)
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse phone %q: %w", s, ErrInvalidPhone)
	}
	return n, nil
}

// ParseClientID parses a client id given as text.
func ParseClientID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("parse client id %q: %w", s, ErrInvalidID)
	}
	return id, nil
}
