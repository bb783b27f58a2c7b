package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// limiter 為 nil 時不限流
func SetupRouter(server *api.Server, authService service.IAuthService, limiter m.Limiter, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.RecoverMiddleware(logger))
	if limiter != nil {
		r.Use(m.NewRateLimitMiddleware(limiter))
	}
	r.Use(m.AuthPayloadMiddleware(authService))
	r.Use(m.LoggerMiddleware(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.SuccessJSON(w, "ok")
	})

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", server.AuthHandler.Register)
			r.Post("/login", server.AuthHandler.Login)
			r.With(m.AuthMiddleware).Post("/logout", server.AuthHandler.Logout)
			r.With(m.AuthMiddleware).Get("/me", server.AuthHandler.Me)
		})

		// 訪客可瀏覽
		r.Get("/products", server.CatalogHandler.ListProducts)
		r.Get("/products/{productID}", server.CatalogHandler.GetProduct)
		r.Get("/categories", server.CatalogHandler.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", server.CartHandler.List)
				r.Delete("/", server.CartHandler.Clear)
				r.Post("/items", server.CartHandler.Add)
				r.Put("/items/{productID}", server.CartHandler.Update)
				r.Delete("/items/{productID}", server.CartHandler.Remove)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Post("/", server.OrderHandler.PlaceOrder)
				r.Get("/", server.OrderHandler.ListMine)
				r.Get("/{orderID}", server.OrderHandler.GetMine)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.With(m.RequireCapability(guard.CatalogAdmin)).Group(func(r chi.Router) {
				r.Post("/products", server.CatalogHandler.CreateProduct)
				r.Put("/products/{productID}", server.CatalogHandler.UpdateProduct)
				r.Delete("/products/{productID}", server.CatalogHandler.DeactivateProduct)
				r.Post("/products/{productID}/restock", server.CatalogHandler.RestockProduct)
				r.Post("/categories", server.CatalogHandler.CreateCategory)
				r.Put("/categories/{categoryID}", server.CatalogHandler.UpdateCategory)
				r.Delete("/categories/{categoryID}", server.CatalogHandler.DeactivateCategory)
			})
			r.With(m.RequireCapability(guard.UserAdmin)).Put("/users/{userID}/active", server.AuthHandler.SetUserActive)
			r.With(m.RequireCapability(guard.OrderAdmin)).Group(func(r chi.Router) {
				r.Get("/orders", server.OrderHandler.ListAll)
				r.Get("/orders/{orderID}", server.OrderHandler.Get)
				r.Put("/orders/{orderID}/status", server.OrderHandler.UpdateStatus)
			})
			r.With(m.RequireCapability(guard.Reporting)).Route("/reports", func(r chi.Router) {
				r.Get("/sales-by-product", server.ReportHandler.SalesByProduct)
				r.Get("/sales-by-period", server.ReportHandler.SalesByPeriod)
				r.Get("/dashboard", server.ReportHandler.Dashboard)
			})
		})
	})
	return r
}
