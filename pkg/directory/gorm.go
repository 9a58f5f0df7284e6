package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const selectUser = `SELECT id, email, first_name, last_name, role,
	COALESCE(array_to_string(permissions, ','), ''), is_active, password_hash
	FROM admin_users`

// Gorm is a directory backed by the admin_users table.
type Gorm struct {
	db *gorm.DB
}

// NewGorm returns a directory reading from db.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// FindByEmail implements Directory.
func (g *Gorm) FindByEmail(ctx context.Context, email string) (*User, error) {
	return g.findOne(ctx, selectUser+` WHERE lower(email) = ?`, NormalizeEmail(email))
}

// FindByID implements Resolver.
func (g *Gorm) FindByID(ctx context.Context, id string) (*User, error) {
	return g.findOne(ctx, selectUser+` WHERE id = ?`, id)
}

// Save inserts u or, when the id already exists, replaces its attributes.
func (g *Gorm) Save(ctx context.Context, u User) error {
	if u.ID == "" || u.Email == "" || u.PasswordHash == "" {
		return errors.New("id, email and password hash are required")
	}
	err := g.db.WithContext(ctx).Exec(`
		INSERT INTO admin_users (id, email, first_name, last_name, role, permissions, is_active, password_hash)
		VALUES (?, ?, ?, ?, ?, string_to_array(?, ','), ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			role = EXCLUDED.role,
			permissions = EXCLUDED.permissions,
			is_active = EXCLUDED.is_active,
			password_hash = EXCLUDED.password_hash,
			updated_at = now()`,
		u.ID, NormalizeEmail(u.Email), u.FirstName, u.LastName, u.Role,
		strings.Join(u.Permissions, ","), u.IsActive, u.PasswordHash,
	).Error
	if err != nil {
		return fmt.Errorf("save admin user %s: %w", u.ID, err)
	}
	return nil
}

// Status checks that the database is reachable.
func (g *Gorm) Status(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (g *Gorm) findOne(ctx context.Context, query string, arg string) (*User, error) {
	var (
		u           User
		permissions string
	)
	row := g.db.WithContext(ctx).Raw(query, arg).Row()
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &permissions, &u.IsActive, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query admin user: %w", err)
	}
	if permissions != "" {
		u.Permissions = strings.Split(permissions, ",")
	}
	return &u, nil
}
