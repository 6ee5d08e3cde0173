// Package validation holds the pure input checks for account fields.
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 20
	NicknameMaxLength = 10
	// PasswordSymbols is the fixed set of symbols a password may contain.
	PasswordSymbols = "@$!%*#?&"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9+_\-.]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// Violation is a named validation failure. Code is stable and surfaced to clients.
type Violation struct {
	Code    string
	Message string
}

func (v *Violation) Error() string {
	return v.Message
}

var (
	ErrRequiredFieldsMissing = &Violation{Code: "REQUIRED_FIELDS_MISSING", Message: "required fields are missing"}
	ErrInvalidEmailFormat    = &Violation{Code: "INVALID_EMAIL_FORMAT", Message: "email must look like local@domain.tld"}
	ErrPasswordLength        = &Violation{Code: "INVALID_PASSWORD_LENGTH", Message: "password must be 8 to 20 characters"}
	ErrWeakPassword          = &Violation{Code: "WEAK_PASSWORD", Message: "password needs a letter, a digit and one of @$!%*#?& and nothing else"}
	ErrNicknameRequired      = &Violation{Code: "NICKNAME_REQUIRED", Message: "nickname is required"}
	ErrNicknameTooLong       = &Violation{Code: "NICKNAME_TOO_LONG", Message: "nickname must be at most 10 characters"}
	ErrInvalidNicknameFormat = &Violation{Code: "INVALID_NICKNAME_FORMAT", Message: "nickname may only contain letters and digits"}
)

// Required fails when any of the values is blank.
func Required(values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return ErrRequiredFieldsMissing
		}
	}
	return nil
}

// Email checks the local@domain.tld shape.
func Email(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmailFormat
	}
	return nil
}

// Password checks length and composition.
func Password(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength || n > PasswordMaxLength {
		return ErrPasswordLength
	}
	var letter, digit, symbol bool
	for _, r := range password {
		switch {
		case r < utf8.RuneSelf && unicode.IsLetter(r):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		default:
			return ErrWeakPassword
		}
	}
	if !letter || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}

// Nickname accepts letters of any script and digits, up to NicknameMaxLength runes.
func Nickname(nickname string) error {
	if nickname == "" {
		return ErrNicknameRequired
	}
	if utf8.RuneCountInString(nickname) > NicknameMaxLength {
		return ErrNicknameTooLong
	}
	for _, r := range nickname {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ErrInvalidNicknameFormat
		}
	}
	return nil
}
