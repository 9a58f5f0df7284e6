// Package db holds the SQL migrations of the admin gateway.
//
// The files are embedded so that builds tagged embed_migrations and the
// integration tests can apply them without a checkout of this directory.
package db

import "embed"

// Migrations contains migrations/*.sql in golang-migrate naming.
//
//go:embed migrations/*.sql
var Migrations embed.FS
