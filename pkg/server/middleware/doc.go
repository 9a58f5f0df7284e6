// Package middleware guards gateway routes.
//
//   - RequireBearer only checks that a bearer Authorization header is present.
//   - RequireAdmin confirms the caller's role with the backend.
//   - RequireAccessToken verifies tokens issued by this service.
package middleware
