package endpoints

import (
	"net/http"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/proxy"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/server"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/server/middleware"
)

var (
	eventStatuses      = []string{"draft", "published", "cancelled", "completed"}
	projectStatuses    = []string{"planning", "ongoing", "completed", "on_hold", "cancelled"}
	submissionStatuses = []string{"new", "in_progress", "resolved", "closed"}
)

func page() []proxy.Param {
	return []proxy.Param{{Name: "page"}, {Name: "limit"}}
}

func params(extra ...proxy.Param) []proxy.Param {
	return append(page(), extra...)
}

var (
	search = proxy.Param{Name: "search", As: "q"}
	status = proxy.Param{Name: "status"}
)

// crud describes the five standard routes of a resource collection.
type crud struct {
	name       string
	path       string
	query      []proxy.Param
	adminReads bool
	noGet      bool
	failure    string
}

func (c crud) routes() []proxy.Route {
	item := c.path + "/{id}"
	routes := []proxy.Route{
		{Name: c.name + ".list", Method: http.MethodGet, Path: c.path, Upstream: c.path,
			Query: c.query, AdminOnly: c.adminReads, FailureMessage: "Failed to fetch " + c.failure},
	}
	if !c.noGet {
		routes = append(routes, proxy.Route{Name: c.name + ".get", Method: http.MethodGet, Path: item,
			Upstream: item, AdminOnly: c.adminReads, FailureMessage: "Failed to fetch " + c.failure})
	}
	return append(routes,
		proxy.Route{Name: c.name + ".create", Method: http.MethodPost, Path: c.path, Upstream: c.path,
			AdminOnly: true, FailureMessage: "Failed to create " + c.failure},
		proxy.Route{Name: c.name + ".update", Method: http.MethodPut, Path: item, Upstream: item,
			AdminOnly: true, FailureMessage: "Failed to update " + c.failure},
		proxy.Route{Name: c.name + ".delete", Method: http.MethodDelete, Path: item, Upstream: item,
			AdminOnly: true, FailureMessage: "Failed to delete " + c.failure},
	)
}

// Routes returns the resource routes in registration order. Fixed paths such
// as /api/media/categories come before the /{id} templates they would
// otherwise be captured by.
func Routes() []proxy.Route {
	var routes []proxy.Route

	// Events
	routes = append(routes,
		proxy.Route{
			Name: "events.status", Method: http.MethodPatch,
			Path: "/api/events/{id}/status", Upstream: "/api/events/{id}", UpstreamMethod: http.MethodPut,
			Body: proxy.Chain(
				proxy.Pick("status"),
				proxy.OneOf("status", eventStatuses, "Invalid status value"),
			),
			AdminOnly: true, FailureMessage: "Failed to update event status",
		},
		proxy.Route{
			Name: "events.registrations", Method: http.MethodGet,
			Path: "/api/events/{id}/registrations", Upstream: "/api/events/{id}/registrations",
			Query: params(status), AdminOnly: true, FailureMessage: "Failed to fetch registrations",
		},
	)
	routes = append(routes, crud{
		name: "events", path: "/api/events", failure: "events",
		query: params(search, status, proxy.Param{Name: "category"}, proxy.Param{Name: "upcoming"},
			proxy.Param{Name: "sortBy"}, proxy.Param{Name: "sortOrder"}),
	}.routes()...)

	// Projects and project requests
	routes = append(routes,
		proxy.Route{
			Name: "projects.status", Method: http.MethodPatch,
			Path: "/api/projects/{id}/status", Upstream: "/api/projects/{id}/status",
			Body: proxy.Chain(
				proxy.Pick("status"),
				proxy.OneOf("status", projectStatuses, "Invalid status value"),
			),
			AdminOnly: true, FailureMessage: "Failed to update project status",
		},
		proxy.Route{
			Name: "project_requests.list", Method: http.MethodGet,
			Path: "/api/project-requests", Upstream: "/api/project-requests",
			Query: params(status), AdminOnly: true, FailureMessage: "Failed to fetch project requests",
		},
		proxy.Route{
			Name: "project_requests.approve", Method: http.MethodPatch,
			Path: "/api/project-requests/{id}/approve", Upstream: "/api/project-requests/{id}/approve",
			AdminOnly: true, FailureMessage: "Failed to approve project request",
		},
		proxy.Route{
			Name: "project_requests.reject", Method: http.MethodPatch,
			Path: "/api/project-requests/{id}/reject", Upstream: "/api/project-requests/{id}/reject",
			Body:      proxy.RequireString("reason", "Rejection reason is required"),
			AdminOnly: true, FailureMessage: "Failed to reject project request",
		},
	)
	routes = append(routes, crud{
		name: "projects", path: "/api/projects", failure: "projects",
		query: params(search, status, proxy.Param{Name: "category"}, proxy.Param{Name: "featured"}),
	}.routes()...)

	// Users
	routes = append(routes,
		proxy.Route{
			Name: "users.role", Method: http.MethodPatch,
			Path: "/api/users/{id}/role", Upstream: "/api/users/{id}/role",
			Body: proxy.Chain(
				proxy.Pick("role"),
				proxy.RequireString("role", "Role is required"),
			),
			AdminOnly: true, FailureMessage: "Failed to update user role",
		},
		proxy.Route{
			Name: "users.status", Method: http.MethodPatch,
			Path: "/api/users/{id}/status", Upstream: "/api/users/{id}/status",
			Body: proxy.Chain(
				proxy.Pick("isActive"),
				proxy.RequireBool("isActive", "isActive must be a boolean"),
			),
			AdminOnly: true, FailureMessage: "Failed to update user status",
		},
	)
	routes = append(routes, crud{
		name: "users", path: "/api/users", failure: "users", adminReads: true,
		query: params(search, proxy.Param{Name: "role"}, proxy.Param{Name: "isActive"}),
	}.routes()...)

	// Media
	routes = append(routes, proxy.Route{
		Name: "media.categories", Method: http.MethodGet,
		Path: "/api/media/categories", Upstream: "/api/media/categories",
		Public: true, FailureMessage: "Failed to fetch media categories",
	})
	routes = append(routes, crud{
		name: "media", path: "/api/media", failure: "media",
		query: params(proxy.Param{Name: "category"}, proxy.Param{Name: "type"}, search),
	}.routes()...)

	// Inventory
	routes = append(routes,
		proxy.Route{
			Name: "inventory.categories", Method: http.MethodGet,
			Path: "/api/inventory/categories", Upstream: "/api/inventory/categories",
			Public: true, FailureMessage: "Failed to fetch inventory categories",
		},
		proxy.Route{
			Name: "inventory.checkout", Method: http.MethodPost,
			Path: "/api/inventory/equipment/{id}/checkout", Upstream: "/api/inventory/equipment/{id}/checkout",
			AdminOnly: true, FailureMessage: "Failed to check out equipment",
		},
		proxy.Route{
			Name: "inventory.return", Method: http.MethodPost,
			Path: "/api/inventory/equipment/{id}/return", Upstream: "/api/inventory/equipment/{id}/return",
			AdminOnly: true, FailureMessage: "Failed to return equipment",
		},
	)
	routes = append(routes, crud{
		name: "inventory", path: "/api/inventory/equipment", failure: "equipment",
		query: params(search, proxy.Param{Name: "category"}, status, proxy.Param{Name: "location"}),
	}.routes()...)

	// Newsletters
	routes = append(routes,
		proxy.Route{
			Name: "newsletters.subscribers", Method: http.MethodGet,
			Path: "/api/newsletters/subscribers", Upstream: "/api/newsletters/subscribers",
			Query: params(status), AdminOnly: true, FailureMessage: "Failed to fetch subscribers",
		},
		proxy.Route{
			Name: "newsletters.send", Method: http.MethodPost,
			Path: "/api/newsletters/{id}/send", Upstream: "/api/newsletters/{id}/send",
			AdminOnly: true, FailureMessage: "Failed to send newsletter",
		},
	)
	routes = append(routes, crud{
		name: "newsletters", path: "/api/newsletters", failure: "newsletters",
		query: params(status),
	}.routes()...)

	// Contact submissions
	routes = append(routes,
		proxy.Route{
			Name: "contact.list", Method: http.MethodGet,
			Path: "/api/contact-submissions", Upstream: "/api/contact-submissions",
			Query: params(status), AdminOnly: true, FailureMessage: "Failed to fetch contact submissions",
		},
		proxy.Route{
			Name: "contact.get", Method: http.MethodGet,
			Path: "/api/contact-submissions/{id}", Upstream: "/api/contact-submissions/{id}",
			AdminOnly: true, FailureMessage: "Failed to fetch contact submission",
		},
		proxy.Route{
			Name: "contact.status", Method: http.MethodPatch,
			Path: "/api/contact-submissions/{id}/status", Upstream: "/api/contact-submissions/{id}/status",
			Body: proxy.Chain(
				proxy.Pick("status", "notes"),
				proxy.OneOf("status", submissionStatuses, "Invalid status value"),
			),
			AdminOnly: true, FailureMessage: "Failed to update contact submission",
		},
		proxy.Route{
			Name: "contact.delete", Method: http.MethodDelete,
			Path: "/api/contact-submissions/{id}", Upstream: "/api/contact-submissions/{id}",
			AdminOnly: true, FailureMessage: "Failed to delete contact submission",
		},
	)

	// Announcements
	routes = append(routes, crud{
		name: "announcements", path: "/api/announcements", failure: "announcements", noGet: true,
		query: params(proxy.Param{Name: "priority"}, proxy.Param{Name: "active", As: "isActive"}),
	}.routes()...)

	return routes
}

// RegisterResourceEndpoints registers every proxied resource route.
func RegisterResourceEndpoints(s *server.Server) {
	admin := middleware.RequireAdmin(s.Backend, s.Log)

	for _, rt := range Routes() {
		h := s.Proxy.Handler(rt)
		if rt.AdminOnly {
			h = admin(h)
		}
		if !rt.Public {
			h = middleware.RequireBearer(h)
		}
		s.Router.Handle(rt.Path, h).Methods(rt.Method)
	}
}
