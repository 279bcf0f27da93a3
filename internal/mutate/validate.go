package mutate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"planify/internal/model"
	"planify/internal/state"
)

var (
	reAlnum      = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	reHasLetter  = regexp.MustCompile(`[a-zA-Z]`)
	reEmailChars = regexp.MustCompile(`^[a-zA-Z0-9@.]+$`)
	reEmail      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

func validateUsername(s string) error {
	if n := len(s); n < 8 || n > 30 {
		return ValidationError{Field: "username", Reason: "must be 8 to 30 characters"}
	}
	if !reAlnum.MatchString(s) {
		return ValidationError{Field: "username", Reason: "only latin letters and digits are allowed"}
	}
	return nil
}

func validatePassword(s string) error {
	if n := len(s); n < 8 || n > 30 {
		return ValidationError{Field: "password", Reason: "must be 8 to 30 characters"}
	}
	if !reAlnum.MatchString(s) {
		return ValidationError{Field: "password", Reason: "only latin letters and digits are allowed"}
	}
	if !reHasLetter.MatchString(s) {
		return ValidationError{Field: "password", Reason: "must contain at least one letter"}
	}
	return nil
}

func validateEmail(s string) error {
	if n := len(s); n < 8 || n > 50 {
		return ValidationError{Field: "email", Reason: "must be 8 to 50 characters"}
	}
	if !reEmailChars.MatchString(s) || !reEmail.MatchString(s) {
		return ValidationError{Field: "email", Reason: "not a valid address"}
	}
	return nil
}

func validateName(field, s string) error {
	if utf8.RuneCountInString(s) < 2 {
		return ValidationError{Field: field, Reason: "must be at least 2 letters"}
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return ValidationError{Field: field, Reason: "only letters are allowed"}
		}
	}
	return nil
}

// checkUnique reports a ConflictError when another user already holds username or email.
// Email is checked first. Comparison is case-insensitive; exceptID is skipped.
func checkUnique(st state.State, username, email, exceptID string) error {
	for _, u := range st.Users {
		if u.ID != exceptID && email != "" && strings.EqualFold(u.Email, email) {
			return ConflictError{Field: "email", Value: email}
		}
	}
	for _, u := range st.Users {
		if u.ID != exceptID && username != "" && strings.EqualFold(u.Username, username) {
			return ConflictError{Field: "username", Value: username}
		}
	}
	return nil
}

func validRole(r model.Role) bool {
	return r == model.RoleAdmin || r == model.RoleUser
}
