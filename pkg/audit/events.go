package audit

import (
	"fmt"
	"strconv"
)

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func severity(success bool) Severity {
	if success {
		return SeverityInfo
	}
	return SeverityWarning
}

// LoginEvent records a password login attempt.
type LoginEvent struct {
	Email    string
	UserID   string
	ClientIP string
	Success  bool
	Reason   string
}

func (e LoginEvent) MessageID() string { return "login" }

func (e LoginEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s logged in", e.Email)
	}
	msg := fmt.Sprintf("%s failed to log in", e.Email)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e LoginEvent) Severity() Severity { return severity(e.Success) }

func (e LoginEvent) Facility() int { return FacilityAuthPriv }

func (e LoginEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:   {"user": e.Email, "method": "password"},
		SDIDClient: {"ip": e.ClientIP},
		SDIDAction: {"operation": "login", "result": result(e.Success)},
	}
	if e.UserID != "" {
		sd[SDIDAuth]["id"] = e.UserID
	}
	return sd
}

// RefreshEvent records a token refresh attempt.
type RefreshEvent struct {
	UserID   string
	ClientIP string
	Success  bool
	Reason   string
}

func (e RefreshEvent) MessageID() string { return "refresh" }

func (e RefreshEvent) Message() string {
	user := e.UserID
	if user == "" {
		user = "unknown user"
	}
	if e.Success {
		return fmt.Sprintf("%s refreshed an access token", user)
	}
	msg := fmt.Sprintf("%s failed to refresh an access token", user)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e RefreshEvent) Severity() Severity { return severity(e.Success) }

func (e RefreshEvent) Facility() int { return FacilityAuthPriv }

func (e RefreshEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:   {"user": e.UserID, "method": "refresh_token"},
		SDIDClient: {"ip": e.ClientIP},
		SDIDAction: {"operation": "refresh", "result": result(e.Success)},
	}
}

// LogoutEvent records a logout acknowledgement. Tokens are not revoked.
type LogoutEvent struct {
	User     string
	ClientIP string
}

func (e LogoutEvent) MessageID() string { return "logout" }

func (e LogoutEvent) Message() string {
	user := e.User
	if user == "" {
		user = "anonymous"
	}
	return fmt.Sprintf("%s logged out", user)
}

func (e LogoutEvent) Severity() Severity { return SeverityInfo }

func (e LogoutEvent) Facility() int { return FacilityAuthPriv }

func (e LogoutEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:   {"user": e.User},
		SDIDClient: {"ip": e.ClientIP},
		SDIDAction: {"operation": "logout", "result": "success"},
	}
}

// AccessEvent records a request refused by the admin check.
type AccessEvent struct {
	User     string
	Role     string
	ClientIP string
	Method   string
	Path     string
	Status   int
	Reason   string
}

func (e AccessEvent) MessageID() string { return "access" }

func (e AccessEvent) Message() string {
	user := e.User
	if user == "" {
		user = "unknown user"
	}
	msg := fmt.Sprintf("%s was denied %s %s", user, e.Method, e.Path)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e AccessEvent) Severity() Severity { return SeverityWarning }

func (e AccessEvent) Facility() int { return FacilityAuth }

func (e AccessEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:    {"user": e.User},
		SDIDSubject: {"path": e.Path},
		SDIDClient:  {"ip": e.ClientIP},
		SDIDAction: {
			"operation": "admin_check",
			"result":    "failure",
			"status":    strconv.Itoa(e.Status),
		},
	}
	if e.Role != "" {
		sd[SDIDAuth]["role"] = e.Role
	}
	return sd
}

// ProxyEvent records a mutating request forwarded to the backend.
type ProxyEvent struct {
	User     string
	ClientIP string
	Route    string
	Method   string
	Path     string
	Status   int
	Success  bool
}

func (e ProxyEvent) MessageID() string { return "proxy" }

func (e ProxyEvent) Message() string {
	user := e.User
	if user == "" {
		user = "anonymous"
	}
	if e.Success {
		return fmt.Sprintf("%s %s %s (%s)", user, e.Method, e.Path, e.Route)
	}
	return fmt.Sprintf("%s tried to %s %s (%s): backend returned %d", user, e.Method, e.Path, e.Route, e.Status)
}

func (e ProxyEvent) Severity() Severity { return severity(e.Success) }

func (e ProxyEvent) Facility() int { return FacilityAuthPriv }

func (e ProxyEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:    {"user": e.User},
		SDIDSubject: {"route": e.Route, "path": e.Path},
		SDIDClient:  {"ip": e.ClientIP},
		SDIDAction: {
			"operation": e.Method,
			"result":    result(e.Success),
			"status":    strconv.Itoa(e.Status),
		},
	}
}
