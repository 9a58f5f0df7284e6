package directory

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/db"
)

var userColumns = []string{"id", "email", "first_name", "last_name", "role", "permissions", "is_active", "password_hash"}

func newMockGorm(t *testing.T) (*Gorm, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	gormDB, err := db.FromConn(conn)
	require.NoError(t, err)
	return NewGorm(gormDB), mock
}

func TestGormFindByEmail(t *testing.T) {
	dir, mock := newMockGorm(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM admin_users WHERE lower(email) = $1`)).
		WithArgs("admin@newtonbotics.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("admin-001", "admin@newtonbotics.com", "Admin", "User", "admin", "read,write", true, "$2a$10$hash"))

	u, err := dir.FindByEmail(context.Background(), " Admin@NewtonBotics.com")
	require.NoError(t, err)
	assert.Equal(t, "admin-001", u.ID)
	assert.Equal(t, []string{"read", "write"}, u.Permissions)
	assert.True(t, u.IsActive)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFindByEmailNotFound(t *testing.T) {
	dir, mock := newMockGorm(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM admin_users WHERE lower(email) = $1`)).
		WithArgs("nobody@newtonbotics.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := dir.FindByEmail(context.Background(), "nobody@newtonbotics.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFindByIDEmptyPermissions(t *testing.T) {
	dir, mock := newMockGorm(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM admin_users WHERE id = $1`)).
		WithArgs("admin-002").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("admin-002", "ops@newtonbotics.com", "", "", "admin", "", false, "$2a$10$hash"))

	u, err := dir.FindByID(context.Background(), "admin-002")
	require.NoError(t, err)
	assert.Empty(t, u.Permissions)
	assert.False(t, u.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormQueryError(t *testing.T) {
	dir, mock := newMockGorm(t)

	mock.ExpectQuery(`FROM admin_users`).WillReturnError(errors.New("connection reset"))

	_, err := dir.FindByID(context.Background(), "admin-001")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGormSave(t *testing.T) {
	dir, mock := newMockGorm(t)

	mock.ExpectExec(`INSERT INTO admin_users`).
		WithArgs("admin-001", "admin@newtonbotics.com", "Admin", "User", "admin", "read,write", true, "$2a$10$hash").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := dir.Save(context.Background(), User{
		ID:           "admin-001",
		Email:        "Admin@NewtonBotics.com",
		FirstName:    "Admin",
		LastName:     "User",
		Role:         "admin",
		Permissions:  []string{"read", "write"},
		IsActive:     true,
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSaveRequiresFields(t *testing.T) {
	dir, _ := newMockGorm(t)
	assert.Error(t, dir.Save(context.Background(), User{ID: "x"}))
}
