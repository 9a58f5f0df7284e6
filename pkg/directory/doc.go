// Package directory provides the administrator accounts the gateway can log in.
//
// The login handler depends only on the Directory interface. Two
// implementations exist:
//
//   - Static holds the single configured administrator (the default).
//   - Gorm reads the admin_users table through gorm and the Postgres driver.
//
// Both also implement Resolver, which token refresh uses to rebuild claims
// from a subject id.
//
// Passwords are stored as bcrypt hashes:
//
//	hash, err := directory.HashPassword("s3cret")
//	ok := directory.CheckPassword(user, "s3cret")
package directory
