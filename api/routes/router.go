package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/grocerease/grocerease-backend/api/controllers"
	"github.com/grocerease/grocerease-backend/api/middleware"
	"github.com/grocerease/grocerease-backend/internal/admin"
	"github.com/grocerease/grocerease-backend/internal/auth"
	"github.com/grocerease/grocerease-backend/internal/employee"
	"github.com/grocerease/grocerease-backend/internal/items"
	"github.com/grocerease/grocerease-backend/internal/lists"
	"github.com/grocerease/grocerease-backend/internal/reports"
	"github.com/grocerease/grocerease-backend/internal/search"
	"github.com/grocerease/grocerease-backend/internal/stores"
	"github.com/grocerease/grocerease-backend/internal/users"
	pkgAuth "github.com/grocerease/grocerease-backend/pkg/auth"
	"github.com/grocerease/grocerease-backend/pkg/config"
	"github.com/grocerease/grocerease-backend/pkg/logger"
	"github.com/grocerease/grocerease-backend/pkg/metrics"
	"github.com/grocerease/grocerease-backend/pkg/ratelimit"
	pkgredis "github.com/grocerease/grocerease-backend/pkg/redis"
)

// Limiters are the per-endpoint rate limiters. Nil disables a limiter.
type Limiters struct {
	Search        ratelimit.Limiter
	LoginIP       ratelimit.Limiter
	LoginEmail    ratelimit.Limiter
	RegisterIP    ratelimit.Limiter
	RegisterEmail ratelimit.Limiter
}

// Dependencies is everything the router hands to middleware and controllers.
// DB, Redis and Idempotency may be nil.
type Dependencies struct {
	DB             controllers.Pinger
	Redis          controllers.Pinger
	Users          middleware.UserLoader
	Revocations    pkgAuth.RevocationStore
	Idempotency    pkgredis.IdempotencyStore
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	Limiters       Limiters

	AuthService     auth.Service
	UserService     users.Service
	StoreService    stores.Service
	ItemService     items.Service
	SearchService   search.Service
	EmployeeService employee.Service
	ReportService   reports.Service
	ListService     lists.Service
	AdminService    admin.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	// Load already rejected malformed entries.
	trustedProxies, _ := cfg.App.TrustedProxyPrefixes()

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.ClientIP(trustedProxies),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	loginPolicy := middleware.AuthRateLimitPolicy{Name: "login", IP: deps.Limiters.LoginIP, Email: deps.Limiters.LoginEmail}
	registerPolicy := middleware.AuthRateLimitPolicy{Name: "register", IP: deps.Limiters.RegisterIP, Email: deps.Limiters.RegisterEmail}

	authenticate := middleware.Auth(cfg.JWT, deps.Users, deps.Revocations, logg)
	idempotent := middleware.Idempotency(deps.Idempotency, middleware.DefaultIdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, logg)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/me", controllers.AuthMe(deps.AuthService, logg))
				r.Put("/profile", controllers.AuthUpdateProfile(deps.AuthService, logg))
				r.Put("/password", controllers.AuthChangePassword(deps.AuthService, logg))
				r.Delete("/account", controllers.AuthDeleteAccount(deps.AuthService, logg))
				r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemsList(deps.ItemService, logg))
			r.Get("/{id}", controllers.ItemGet(deps.ItemService, logg))
		})

		r.Route("/search", func(r chi.Router) {
			r.Use(middleware.RateLimit(deps.Limiters.Search, "search", logg))
			r.Get("/", controllers.Search(deps.SearchService, logg))
			r.Get("/filters", controllers.SearchFilters(deps.SearchService, logg))
			r.Post("/advanced", controllers.SearchAdvanced(deps.SearchService, logg))
			r.Get("/presets/{name}", controllers.SearchPreset(deps.SearchService, logg))
			r.Get("/suggestions", controllers.SearchSuggestions(deps.SearchService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/reasons", controllers.ReportReasons(deps.ReportService))

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.With(idempotent).Post("/", controllers.ReportCreate(deps.ReportService, logg))
				r.Get("/my", controllers.ReportsMine(deps.ReportService, logg))
				r.Get("/check/{itemId}", controllers.ReportCheck(deps.ReportService, logg))
			})
		})

		r.Route("/employee", func(r chi.Router) {
			r.Use(authenticate, middleware.RequireEmployee(deps.Users, logg))
			r.Get("/products", controllers.EmployeeProducts(deps.EmployeeService, logg))
			r.Post("/products", controllers.EmployeeCreateProduct(deps.EmployeeService, logg))
			r.Get("/products/{id}", controllers.EmployeeProduct(deps.EmployeeService, logg))
			r.Patch("/products/{id}/stock", controllers.EmployeeUpdateStock(deps.EmployeeService, logg))
			r.Get("/products/{id}/history", controllers.EmployeeHistory(deps.EmployeeService, logg))
			r.Get("/profile", controllers.EmployeeProfile(deps.EmployeeService, logg))
			r.Get("/stats", controllers.EmployeeStats(deps.EmployeeService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate, middleware.RequireAdmin(logg))
			r.Get("/stats", controllers.AdminStats(deps.AdminService, logg))
			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminUsers(deps.UserService, logg))
				r.Get("/{id}", controllers.AdminUser(deps.UserService, logg))
				r.Put("/{id}", controllers.AdminUpdateUser(deps.UserService, logg))
				r.Delete("/{id}", controllers.AdminDeleteUser(deps.UserService, logg))
				r.Patch("/{id}/role", controllers.AdminChangeRole(deps.UserService, logg))
				r.Post("/{id}/reset-password", controllers.AdminResetPassword(deps.UserService, logg))
			})
			r.Get("/reports", controllers.AdminReports(deps.ReportService, logg))
			r.Patch("/reports/{id}", controllers.AdminModerateReport(deps.ReportService, logg))
			r.Delete("/items/{id}", controllers.AdminDeleteItem(deps.ItemService, logg))
		})

		r.Route("/stores", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", controllers.StoresList(deps.StoreService, logg))
			r.Get("/{id}", controllers.StoreGet(deps.StoreService, logg))
			r.Get("/{id}/employees", controllers.StoreEmployees(deps.StoreService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.StoreCreate(deps.StoreService, logg))
				r.Put("/{id}", controllers.StoreUpdate(deps.StoreService, logg))
				r.Delete("/{id}", controllers.StoreDelete(deps.StoreService, logg))
				r.Post("/{id}/employees", controllers.StoreAddEmployee(deps.StoreService, logg))
				r.Delete("/{id}/employees/{userId}", controllers.StoreRemoveEmployee(deps.StoreService, logg))
			})
		})

		r.Route("/lists", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", controllers.ListsIndex(deps.ListService, logg))
			r.With(idempotent).Post("/", controllers.ListCreate(deps.ListService, logg))
			r.Get("/{id}", controllers.ListGet(deps.ListService, logg))
			r.Put("/{id}", controllers.ListRename(deps.ListService, logg))
			r.Delete("/{id}", controllers.ListDelete(deps.ListService, logg))
			r.With(idempotent).Post("/{id}/items", controllers.ListAddItem(deps.ListService, logg))
			r.Patch("/{id}/items/{lineId}", controllers.ListUpdateQuantity(deps.ListService, logg))
			r.Delete("/{id}/items/{lineId}", controllers.ListRemoveItem(deps.ListService, logg))
		})
	})

	return r
}
