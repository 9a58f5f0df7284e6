package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/backend"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/directory"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/proxy"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/token"
)

// Options holds the dependencies of a Server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	Version        string

	Issuer    *token.Issuer
	Directory directory.Directory
	Backend   *backend.Client
	Log       *zap.SugaredLogger

	// AccessLog receives one line per request in Apache combined format.
	// Defaults to os.Stdout.
	AccessLog io.Writer
}

// Server is the admin gateway HTTP server.
type Server struct {
	Router    *mux.Router
	Issuer    *token.Issuer
	Directory directory.Directory
	Backend   *backend.Client
	Proxy     *proxy.Proxy
	Log       *zap.SugaredLogger
	Version   string

	allowedOrigins []string
	accessLog      io.Writer
	srv            *http.Server
}

// NewServer builds a Server. Endpoints are added with endpoints.RegisterAll.
func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	accessLog := opts.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	s := &Server{
		Router:         mux.NewRouter().UseEncodedPath(),
		Issuer:         opts.Issuer,
		Directory:      opts.Directory,
		Backend:        opts.Backend,
		Proxy:          proxy.New(opts.Backend, log),
		Log:            log,
		Version:        opts.Version,
		allowedOrigins: opts.AllowedOrigins,
		accessLog:      accessLog,
	}

	s.srv = &http.Server{
		Handler: s.Handler(),
		Addr:    opts.Addr,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s
}

// Handler returns the router wrapped with access logging, panic recovery and CORS.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router
	if len(s.allowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.allowedOrigins),
			handlers.AllowedMethods([]string{
				http.MethodGet, http.MethodPost, http.MethodPut,
				http.MethodPatch, http.MethodDelete, http.MethodOptions,
			}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
			handlers.AllowCredentials(),
		)(h)
	}
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.Log}),
		handlers.PrintRecoveryStack(true),
	)(h)
	return handlers.LoggingHandler(s.accessLog, h)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.Log.Infow("admin gateway listening", "addr", ln.Addr().String())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// recoveryLogger adapts zap to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	log *zap.SugaredLogger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Errorw("recovered from panic", "panic", fmt.Sprint(v...))
}
