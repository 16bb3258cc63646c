package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// bcrypt refuses anything longer
	MaxPasswordLength = 72
)

// PasswordCost is the bcrypt cost used by HashPassword.
var PasswordCost = 14

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword checks a new account's password: 8 to 72 bytes, at least
// one letter and one digit, and not containing the username.
func ValidatePassword(username, password string) error {
	var hasLetter, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsLetter(ch):
			hasLetter = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	var failures []string
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		failures = append(failures, fmt.Sprintf("be %d to %d bytes long", MinPasswordLength, MaxPasswordLength))
	}
	if !hasLetter || !hasDigit {
		failures = append(failures, "mix letters and digits")
	}
	if username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		failures = append(failures, "not contain the username")
	}

	if len(failures) > 0 {
		return fmt.Errorf("password must %s", strings.Join(failures, " and "))
	}
	return nil
}
