package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pupped/storefront/internal/auth"
	"github.com/pupped/storefront/internal/handlers"
	"github.com/pupped/storefront/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth      *handlers.AuthHandler
	Products  *handlers.ProductHandler
	Articles  *handlers.ArticleHandler
	Inquiries *handlers.InquiryHandler
	Admin     *handlers.AdminHandler
	Health    *handlers.HealthHandler
}

// Limits caps raw request volume on the public write endpoints
type Limits struct {
	Login   middleware.RateLimitConfig
	Contact middleware.RateLimitConfig
}

// RegisterRoutes registers all application routes. The auth gate is
// installed on the router itself so it sees every request.
func RegisterRoutes(router chi.Router, h Handlers, sessions auth.SessionChecker, limits Limits) {
	router.Use(auth.Gate(sessions))

	router.Get("/health", h.Health.Check)

	router.Route("/api", func(r chi.Router) {
		// Public routes - no session required
		r.With(middleware.RateLimitByIP(limits.Login)).Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)

		r.Get("/products", h.Products.List)
		r.Get("/products/{id}", h.Products.Get)
		r.Get("/articles", h.Articles.List)
		r.Get("/articles/{id}", h.Articles.Get)
		r.With(middleware.RateLimitByIP(limits.Contact)).Post("/contact", h.Inquiries.Submit)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(sessions))

			r.Post("/products", h.Products.Create)
			r.Put("/products/{id}", h.Products.Update)
			r.Delete("/products/{id}", h.Products.Delete)
			r.Post("/upload", h.Products.UploadImage)
			r.Delete("/images/{id}", h.Products.DeleteImage)

			r.Post("/articles", h.Articles.Create)
			r.Put("/articles/{id}", h.Articles.Update)
			r.Delete("/articles/{id}", h.Articles.Delete)
			r.Post("/articles/images", h.Articles.UploadImage)

			r.Patch("/submissions/{id}", h.Inquiries.UpdateStatus)
		})
	})

	// Admin area views; the gate has already redirected anonymous callers
	router.Route(auth.AdminPathPrefix, func(r chi.Router) {
		r.Get("/", h.Admin.Dashboard)
		r.Get("/login", h.Admin.LoginPage)
		r.Get("/products", h.Products.List)
		r.Get("/products/{id}", h.Products.Get)
		r.Get("/articles", h.Articles.List)
		r.Get("/articles/{id}", h.Articles.Get)
		r.Get("/submissions", h.Inquiries.List)
	})
}
