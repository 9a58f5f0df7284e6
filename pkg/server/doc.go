// Package server provides the HTTP server of the admin gateway.
//
// The server owns a gorilla/mux router wrapped with request logging, panic
// recovery and CORS handling. It does not register any routes itself.
//
// # Server Setup
//
//	srv := server.NewServer(server.Options{
//	    Addr:      cfg.Addr(),
//	    Issuer:    issuer,
//	    Directory: dir,
//	    Backend:   backend.NewClient(baseURL, timeout),
//	    Log:       log,
//	})
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//   - /api/auth/login, /api/auth/refresh, /api/auth/logout, /api/auth/verify
//   - /api/health and / (status)
//   - /api/events, /api/projects, /api/users, /api/media, /api/inventory,
//     /api/newsletters, /api/contact, /api/announcements (proxied)
package server
