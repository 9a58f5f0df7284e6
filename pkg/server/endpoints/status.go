package endpoints

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/proxy"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/server"
)

// ServiceName is reported by the status endpoints.
const ServiceName = "NewtonBotics Admin API"

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadinessResponse is returned by GET /api/health/ready.
type ReadinessResponse struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	Directory string `json:"directory"`
}

// StatusChecker is implemented by directories backed by a database.
type StatusChecker interface {
	Status(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

// RegisterStatusEndpoints registers the status and health endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Status page (no auth required)
	s.Router.HandleFunc("/", handleStatus(s.Version)).Methods("GET")

	// GET /api/health - liveness, never calls the backend
	s.Router.HandleFunc("/api/health", handleHealth(s.Version)).Methods("GET")

	// GET /api/health/ready - readiness, checks the directory database
	s.Router.HandleFunc("/api/health/ready", handleReady(s)).Methods("GET")
}

func displayVersion(version string) string {
	if version == "" {
		return "dev"
	}
	return version
}

func handleHealth(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proxy.JSON(w, http.StatusOK, HealthResponse{
			Success: true,
			Status:  "ok",
			Version: displayVersion(version),
		})
	}
}

func handleReady(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checker, ok := s.Directory.(StatusChecker)
		if !ok {
			proxy.JSON(w, http.StatusOK, ReadinessResponse{Success: true, Status: "ok", Directory: "static"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := checker.Status(ctx); err != nil {
			s.Log.Warnw("directory database unavailable", "error", err)
			proxy.JSON(w, http.StatusServiceUnavailable, ReadinessResponse{Status: "unavailable", Directory: "unavailable"})
			return
		}
		proxy.JSON(w, http.StatusOK, ReadinessResponse{Success: true, Status: "ok", Directory: "ok"})
	}
}

func handleStatus(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// JSON is requested via Accept header or format query param
		accept := r.Header.Get("Accept")
		format := r.URL.Query().Get("format")
		if format == "json" || strings.Contains(accept, "application/json") {
			proxy.JSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"name":    ServiceName,
				"version": displayVersion(version),
			})
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "%s\nVersion %s\nStatus: running\n", ServiceName, displayVersion(version))
	}
}
