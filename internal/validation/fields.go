// Package validation provides input validation for API requests.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Field limits.
const (
	UsernameMin = 3
	UsernameMax = 80
	EmailMax    = 120
	PasswordMin = 6
	PasswordMax = 128
	TitleMax    = 200
	BodyMin     = 10
	AuthorMax   = 100
	CommentMax  = 1000
	PerPageMax  = 100
)

// ValidateUsername checks length and allowed characters.
func ValidateUsername(username string) error {
	if err := checkLength(username, UsernameMin, UsernameMax); err != nil {
		return err
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("Username can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("Not a valid email address.")
	}
	if len(email) > EmailMax {
		return fmt.Errorf("Longer than maximum length %d.", EmailMax)
	}
	return nil
}

// ValidatePassword checks password length. Strength rules are left to clients.
func ValidatePassword(password string) error {
	return checkLength(password, PasswordMin, PasswordMax)
}

// checkLength counts runes, not bytes. max <= 0 means unbounded.
func checkLength(s string, min, max int) error {
	n := utf8.RuneCountInString(s)
	switch {
	case max > 0 && (n < min || n > max):
		if min == max {
			return fmt.Errorf("Length must be %d.", min)
		}
		return fmt.Errorf("Length must be between %d and %d.", min, max)
	case n < min:
		return fmt.Errorf("Shorter than minimum length %d.", min)
	}
	return nil
}

func oneOf(value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("Must be one of: %s.", strings.Join(allowed, ", "))
}
