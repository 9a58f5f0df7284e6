// Package token issues and verifies the bearer tokens of the admin account.
//
// Access tokens carry the subject id, email, role and permissions and live for
// 24 hours. Refresh tokens carry only the subject id and live for 7 days. The two
// kinds are signed (HS256) with different secrets, so a leaked refresh secret
// cannot forge access tokens and vice versa.
//
// # Basic Usage
//
//	issuer, err := token.NewIssuer(token.Config{
//	    AccessSecret:  accessSecret,
//	    RefreshSecret: refreshSecret,
//	})
//
//	access, _ := issuer.IssueAccessToken(token.Subject{ID: "admin-001", Role: "admin"})
//	claims, err := issuer.VerifyAccess(access)
//
// There is no revocation list: a token stays valid until it expires.
package token
