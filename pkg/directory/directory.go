package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound is returned when no administrator matches the lookup.
var ErrNotFound = errors.New("user not found")

// User is an administrator account.
type User struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	IsActive     bool     `json:"isActive"`
	PasswordHash string   `json:"-"`
}

// Directory looks administrators up by email. Implementations must be safe for
// concurrent use.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// Resolver is implemented by directories that can look a user up by id.
// Token refresh needs it to rebuild the access token claims.
type Resolver interface {
	FindByID(ctx context.Context, id string) (*User, error)
}

// NormalizeEmail trims and lower-cases an email address for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckPassword reports whether plaintext matches the user's bcrypt hash.
func CheckPassword(u *User, plaintext string) bool {
	if u == nil || u.PasswordHash == "" || plaintext == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}

// HashPassword returns the bcrypt hash of plaintext at the default cost.
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
