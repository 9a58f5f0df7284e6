package directory

import (
	"context"
)

// DefaultAdminID and DefaultAdminEmail identify the built-in administrator.
const (
	DefaultAdminID    = "admin-001"
	DefaultAdminEmail = "admin@newtonbotics.com"
)

// DefaultPermissions are granted to the built-in administrator.
var DefaultPermissions = []string{
	"read",
	"write",
	"delete",
	"manage_users",
	"manage_content",
	"manage_inventory",
}

// DefaultAdmin returns the built-in administrator record with the given email
// (DefaultAdminEmail when empty) and bcrypt password hash.
func DefaultAdmin(email, passwordHash string) User {
	if email == "" {
		email = DefaultAdminEmail
	}
	return User{
		ID:           DefaultAdminID,
		Email:        email,
		FirstName:    "Admin",
		LastName:     "User",
		Role:         "admin",
		Permissions:  append([]string(nil), DefaultPermissions...),
		IsActive:     true,
		PasswordHash: passwordHash,
	}
}

// Static is a directory holding a fixed set of users, normally the single
// configured administrator.
type Static struct {
	byEmail map[string]User
	byID    map[string]User
}

// NewStatic returns a directory containing users.
func NewStatic(users ...User) *Static {
	s := &Static{
		byEmail: make(map[string]User, len(users)),
		byID:    make(map[string]User, len(users)),
	}
	for _, u := range users {
		s.byEmail[NormalizeEmail(u.Email)] = u
		s.byID[u.ID] = u
	}
	return s
}

// FindByEmail implements Directory. The comparison ignores case and
// surrounding whitespace.
func (s *Static) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// FindByID implements Resolver.
func (s *Static) FindByID(_ context.Context, id string) (*User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}
