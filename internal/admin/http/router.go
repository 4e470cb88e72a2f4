package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/userdesk/userdesk/internal/admin/service"
	"github.com/userdesk/userdesk/internal/admin/store"
	"github.com/userdesk/userdesk/pkg/httpx"
	"github.com/userdesk/userdesk/pkg/slogx"

	_ "github.com/userdesk/userdesk/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	AuthService  *service.AuthService
	UserService  *service.UserService
	GroupService *service.GroupService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerGroups()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			UserDesk Administration API
//	@version		0.1.0
//	@description	User and group administration backend: password login with JWT
//	@description	access/refresh token pairs, soft-delete-aware user lifecycle and
//	@description	physically-deleted groups.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	r.Mux.Handle("POST /v1/auth/token", &TokenHandler{AuthService: r.AuthService})
	r.Mux.Handle("POST /v1/auth/refresh", &RefreshHandler{AuthService: r.AuthService})
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	authed := requireUser(r.AuthService)

	// Registration is open; a bearer token is honoured when present so an
	// admin can create other admins through the same endpoint.
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.Create), optionalUser(r.AuthService)))

	r.Mux.Handle("GET /v1/users", httpx.Chain(http.HandlerFunc(h.List), authed))
	r.Mux.Handle("GET /v1/users/me", httpx.Chain(http.HandlerFunc(h.Me), authed))
	r.Mux.Handle("GET /v1/users/{id}", httpx.Chain(http.HandlerFunc(h.Get), authed))
	r.Mux.Handle("PATCH /v1/users/{id}", httpx.Chain(http.HandlerFunc(h.Update), authed))
	r.Mux.Handle("DELETE /v1/users/{id}", httpx.Chain(http.HandlerFunc(h.Delete), authed))
	r.Mux.Handle("DELETE /v1/users/{id}/permanent", httpx.Chain(http.HandlerFunc(h.Purge), authed))
}

func (r *Router) registerGroups() {
	h := &GroupsHandler{GroupService: r.GroupService}

	authed := requireUser(r.AuthService)

	r.Mux.Handle("POST /v1/groups", httpx.Chain(http.HandlerFunc(h.Create), authed))
	r.Mux.Handle("GET /v1/groups", httpx.Chain(http.HandlerFunc(h.List), authed))
	r.Mux.Handle("GET /v1/groups/{id}", httpx.Chain(http.HandlerFunc(h.Get), authed))
	r.Mux.Handle("PATCH /v1/groups/{id}", httpx.Chain(http.HandlerFunc(h.Update), authed))
	r.Mux.Handle("DELETE /v1/groups/{id}", httpx.Chain(http.HandlerFunc(h.Delete), authed))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}
