package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "firebase-kit/internal/shared/errors"
)

// MinPasswordLength matches the platform's minimum password length
const MinPasswordLength = 6

// ErrWeakPassword is returned for passwords shorter than MinPasswordLength
var ErrWeakPassword = fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrInvalidInput, MinPasswordLength)

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares password against a bcrypt hash
func CheckPassword(hash, password string) error {
	if hash == "" {
		return apperrors.ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apperrors.ErrInvalidCredentials
	}
	return err
}
