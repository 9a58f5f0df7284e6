package directory

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	migrations "github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/db"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/db"
)

// startPostgres runs a throwaway Postgres container with the migrations applied.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("admin_test"),
		tcpostgres.WithUsername("admin"),
		tcpostgres.WithPassword("admin"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sub, err := fs.Sub(migrations.Migrations, "migrations")
	require.NoError(t, err)
	source, err := iofs.New(sub, ".")
	require.NoError(t, err)
	m, err := migrate.NewWithSourceInstance("iofs", source, connStr)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	_, _ = m.Close()

	return connStr
}

func TestGormIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration tests. Set INTEGRATION_TEST=1 to run.")
	}

	gormDB, err := db.Connect(db.Config{URL: startPostgres(t)})
	require.NoError(t, err)
	dir := NewGorm(gormDB)
	ctx := context.Background()

	require.NoError(t, dir.Status(ctx))

	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	require.NoError(t, dir.Save(ctx, DefaultAdmin("", hash)))

	u, err := dir.FindByEmail(ctx, "ADMIN@newtonbotics.com")
	require.NoError(t, err)
	assert.Equal(t, DefaultAdminID, u.ID)
	assert.Equal(t, DefaultPermissions, u.Permissions)
	assert.True(t, CheckPassword(u, "admin123"))

	// Saving again updates in place.
	updated := DefaultAdmin("", hash)
	updated.IsActive = false
	updated.Permissions = nil
	require.NoError(t, dir.Save(ctx, updated))

	u, err = dir.FindByID(ctx, DefaultAdminID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	assert.Empty(t, u.Permissions)

	_, err = dir.FindByEmail(ctx, "missing@newtonbotics.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
