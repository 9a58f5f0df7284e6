// Command adminctl runs the NewtonBotics admin panel API gateway.
//
// The gateway authenticates panel administrators, issues their bearer tokens
// and forwards every other panel request to the NewtonBotics backend API,
// normalizing error responses into {success, message} envelopes.
//
// # Architecture
//
//   - pkg/server: HTTP server, CORS, access logging and panic recovery
//   - pkg/server/endpoints: authentication, status and proxied resource routes
//   - pkg/server/middleware: bearer and admin checks
//   - pkg/proxy: the route descriptor and the single forwarding handler
//   - pkg/backend: the outbound client for the backend API
//   - pkg/token: access and refresh token issue and verification
//   - pkg/directory: administrator lookup (static or PostgreSQL)
//   - pkg/audit: RFC5424 audit records with optional persistence
//   - pkg/config: layered configuration with hot reload
//
// # Quick Start
//
//	# Hash the administrator password
//	adminctl password hash
//	export ADMIN_PASSWORD_HASH='$2a$10$...'
//	export JWT_SECRET=... JWT_REFRESH_SECRET=...
//
//	# Start the server
//	adminctl server
//
// # Environment Variables
//
//   - BACKEND_URL: base URL of the backend API (also NEXT_PUBLIC_BACKEND_URL, API_BASE_URL)
//   - JWT_SECRET, JWT_REFRESH_SECRET: token signing secrets
//   - ADMIN_EMAIL, ADMIN_PASSWORD_HASH: the built-in administrator
//   - ADMIN_DIRECTORY: static (default) or postgres
//   - DATABASE_URL: PostgreSQL connection string for the postgres directory
//   - AUDIT_DATABASE_URL: PostgreSQL connection string for audit persistence
//   - LOG_LEVEL: Log level (debug, info, warn, error)
//   - PORT: Server port (default: 3000)
package main
