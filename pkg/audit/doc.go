// Package audit provides audit logging for the admin gateway.
//
// Security relevant outcomes are written as RFC5424 syslog records:
//
//   - password logins (success/failure)
//   - token refreshes
//   - logouts
//   - requests refused by the admin check
//   - create, update and delete requests forwarded to the backend
//
// # Usage
//
//	audit.Log(audit.LoginEvent{Email: email, ClientIP: ip, Success: true})
//
// Records go to DefaultLogger (stdout). When a Store is configured with
// Configure, each record is also inserted into the messages table.
package audit
