package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to local sign-up and password changes.
const MinPasswordLength = 8

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type BcryptPasswordHasher struct {
	cost int
}

// NewBcryptPasswordHasher uses bcrypt.DefaultCost when cost is zero.
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare returns nil when plain matches hash.
func (h *BcryptPasswordHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// NormalizeEmail trims spaces and lowercases the email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredentials checks the shape of a sign-up email and password.
func ValidateCredentials(email, password string) error {
	if NormalizeEmail(email) == "" {
		return ErrEmailRequired
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
