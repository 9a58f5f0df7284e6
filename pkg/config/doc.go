// Package config provides configuration management for the admin panel API.
//
// # Configuration Sources
//
// Values are resolved in increasing order of precedence:
//
//   - Built-in defaults
//   - The YAML config file (ADMIN_CONFIG_PATH/admin.yml)
//   - A .env file (ADMIN_ENV_FILE, default ".env"), which never overrides real environment variables
//   - Environment variables
//
// Every attribute remembers its source so `adminctl configuration show` can
// explain where a value came from.
//
// # Key Configuration Options
//
//   - BACKEND_URL: base URL of the upstream API (legacy names NEXT_PUBLIC_BACKEND_URL and API_BASE_URL are still read)
//   - JWT_SECRET / JWT_REFRESH_SECRET: token signing secrets
//   - ADMIN_EMAIL / ADMIN_PASSWORD_HASH: the static administrator account
//   - ADMIN_DIRECTORY / DATABASE_URL: user directory backend
//   - LOG_LEVEL / LOG_FORMAT: logging verbosity and encoding
//   - PORT / BIND_ADDRESS: HTTP listen address
//
// The signing secrets and the admin password have development fallbacks.
// InsecureDefaults reports them, and Validate rejects them when the
// environment is "production".
package config
