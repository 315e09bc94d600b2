// Package auth holds credential storage and the password policy.
package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xonix-directory/internal/config"
	"github.com/xonix-directory/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Credentials turns passwords into their stored form and checks them.
type Credentials interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// NewCredentials picks bcrypt or legacy plaintext storage from cfg
func NewCredentials(cfg *config.AuthConfig) Credentials {
	if cfg.HashPasswords {
		return Bcrypt{Cost: cfg.BcryptCost}
	}
	return Plaintext{}
}

// Plaintext stores passwords as-is. Kept for compatibility with existing
// record files.
type Plaintext struct{}

// Hash returns password unchanged
func (Plaintext) Hash(password string) (string, error) {
	return password, nil
}

// Verify compares as-is
func (Plaintext) Verify(stored, password string) bool {
	return stored == password
}

// Bcrypt stores bcrypt hashes. Records written before hashing was enabled
// still hold plaintext and are compared as-is.
type Bcrypt struct {
	Cost int
}

// Hash returns the bcrypt hash of password
func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks password against a hash or a legacy plaintext value
func (b Bcrypt) Verify(stored, password string) bool {
	if !isBcryptHash(stored) {
		return stored == password
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// NormalizeUsername trims trailing spaces and rejects empty names or
// names with embedded whitespace
func NormalizeUsername(name string) (string, error) {
	name = strings.TrimRight(name, " ")
	if !domain.ValidUsername(name) {
		return "", domain.ErrInvalidUsername
	}
	return name, nil
}

// CheckPasswordStrength enforces length bounds, no spaces, and at least one
// letter, one digit and one other character
func CheckPasswordStrength(password string, minLen, maxLen int) error {
	if n := len(password); n < minLen || n > maxLen {
		return domain.ErrWeakPassword
	}

	var hasDigit, hasLetter, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsSpace(c):
			return domain.ErrWeakPassword
		case unicode.IsDigit(c):
			hasDigit = true
		case unicode.IsLetter(c):
			hasLetter = true
		default:
			hasSpecial = true
		}
	}
	if !hasDigit || !hasLetter || !hasSpecial {
		return domain.ErrWeakPassword
	}
	return nil
}
