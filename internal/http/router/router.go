package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storefront-api/internal/domain"
	"storefront-api/internal/http/handler"
	"storefront-api/internal/http/middleware"
	"storefront-api/internal/http/response"
)

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	UserHandler      *handler.UserHandler
	CatalogHandler   *handler.CatalogHandler
	Authenticator    middleware.Authenticator
	ExposeAuthErrors bool
	CORSOrigins      []string
	AuthRateLimitRPM int
	APIRateLimitRPM  int
	RateLimitBackend middleware.Limiter
	EnableOTelHTTP   bool
}

func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	backend := dep.RateLimitBackend
	if backend == nil {
		backend = middleware.NewLocalLimiter()
	}
	apiLimiter := middleware.NewRateLimiter(backend, dep.APIRateLimitRPM, time.Minute, middleware.FailOpen, "api").Middleware()
	authLimiter := middleware.NewRateLimiter(backend, dep.AuthRateLimitRPM, time.Minute, middleware.FailClosed, "auth").Middleware()
	r.Use(apiLimiter)

	authGate := middleware.Auth(dep.Authenticator, dep.ExposeAuthErrors)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
			r.With(authLimiter).Post("/refresh", dep.AuthHandler.Refresh)
			r.With(authGate).Post("/logout", dep.AuthHandler.Logout)
		})

		r.With(authGate).Get("/me", dep.UserHandler.Me)

		r.Get("/products", dep.CatalogHandler.ListProducts)
		r.Get("/products/{id}", dep.CatalogHandler.GetProduct)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authGate)
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/products", dep.CatalogHandler.AdminListProducts)
			r.Post("/products", dep.CatalogHandler.CreateProduct)
			r.Patch("/products/{id}", dep.CatalogHandler.UpdateProduct)
			r.Delete("/products/{id}", dep.CatalogHandler.DeleteProduct)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
