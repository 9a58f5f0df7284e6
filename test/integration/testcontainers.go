package integration

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	migrations "github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/db"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/db"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/directory"
)

const (
	adminPassword = "integration-password"
	accessSecret  = "integration-access-secret"
	refreshSecret = "integration-refresh-secret"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	Container   testcontainers.Container
	Directory   *directory.Gorm
	Backend     *FakeBackend
	ServerURL   string
	DatabaseURL string
	HTTPClient  *http.Client
	server      *ServerInstance
	backendSrv  *httptest.Server
}

// NewTestContext starts PostgreSQL in a container, applies the migrations,
// seeds the administrator and starts the gateway in front of a fake backend.
// Modes:
//   - Inline mode (default): the gateway runs in-process
//   - Binary mode: set ADMINCTL_BINARY to the path of the adminctl binary
func NewTestContext(ctx context.Context) (*TestContext, error) {
	binaryPath := os.Getenv("ADMINCTL_BINARY")
	if binaryPath != "" {
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("ADMINCTL_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	} else {
		log.Println("Using inline server mode")
	}

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
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := runMigrations(connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	gormDB, err := db.Connect(db.Config{URL: connStr})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	dir := directory.NewGorm(gormDB)
	hash, err := directory.HashPassword(adminPassword)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}
	if err := dir.Save(ctx, directory.DefaultAdmin("", hash)); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to seed administrator: %w", err)
	}

	fake := NewFakeBackend()
	backendSrv := httptest.NewServer(fake)

	tc := &TestContext{
		DB:          gormDB,
		Container:   pgContainer,
		Directory:   dir,
		Backend:     fake,
		DatabaseURL: connStr,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		backendSrv:  backendSrv,
	}

	if binaryPath != "" {
		tc.server, err = startBinaryServer(binaryPath, connStr, backendSrv.URL)
	} else {
		tc.server, err = startInlineServer(dir, backendSrv.URL)
	}
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}
	tc.ServerURL = tc.server.ServerURL

	return tc, nil
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.server != nil {
		tc.server.Stop()
	}
	if tc.backendSrv != nil {
		tc.backendSrv.Close()
	}
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

func runMigrations(connStr string) error {
	sub, err := fs.Sub(migrations.Migrations, "migrations")
	if err != nil {
		return err
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, connStr)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
