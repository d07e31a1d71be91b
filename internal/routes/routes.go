package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/catalogapi/internal/handlers"
	"github.com/example/catalogapi/internal/middleware"
)

// Dependencies are the collaborators the HTTP routes are built from.
type Dependencies struct {
	Auth     handlers.AuthService
	Catalog  handlers.CatalogService
	Verifier middleware.TokenVerifier

	// Metrics serves /metrics when set.
	Metrics fiber.Handler
	// UploadDir is served under /uploads when set.
	UploadDir string
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Auth)
	productHandler := handlers.NewProductHandler(deps.Catalog)

	app.Get("/health", handlers.Health)
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics)
	}
	if deps.UploadDir != "" {
		app.Static("/uploads", deps.UploadDir)
	}

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Product routes. Auth is per route so unknown paths still reach NotFound.
	requireAuth := middleware.AuthMiddleware(deps.Verifier)
	products := api.Group("/products")
	products.Post("/add", requireAuth, productHandler.AddProduct)
	products.Get("/list", requireAuth, productHandler.ListProducts)

	app.Use(handlers.NotFound)
}
