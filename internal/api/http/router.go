package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bistro-service/internal/api/http/handlers"
	"github.com/spec-kit/bistro-service/internal/auth"
	"github.com/spec-kit/bistro-service/internal/repository"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Menu           *handlers.MenuHandler
	Carts          *handlers.CartsHandler
	Payments       *handlers.PaymentsHandler
	AuthMiddleware *auth.AuthMiddleware
	UserRepo       repository.UserRepository
}

// RegisterRoutes wires HTTP routes. Privileged routes pass through the token
// verifier first, then a fresh role or self-access check.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	verified := cfg.AuthMiddleware.Handle
	adminOnly := auth.RequireAdmin(cfg.UserRepo)

	app.Post("/jwt", cfg.Users.IssueToken)
	app.Post("/login", cfg.Users.Login)

	app.Post("/users", cfg.Users.Register)
	app.Get("/users", verified, adminOnly, cfg.Users.List)
	app.Get("/users/admin/:email", verified, auth.RequireSelf("email"), cfg.Users.AdminStatus)
	app.Patch("/users/admin/:id", verified, adminOnly, cfg.Users.Elevate)
	app.Delete("/users/:id", verified, adminOnly, cfg.Users.Delete)

	app.Get("/menu", cfg.Menu.List)
	app.Post("/menu", verified, adminOnly, cfg.Menu.Create)
	app.Delete("/menu/:id", verified, adminOnly, cfg.Menu.Delete)

	app.Get("/carts", cfg.Carts.List)
	app.Post("/carts", cfg.Carts.Create)
	app.Delete("/carts/:id", cfg.Carts.Delete)

	app.Post("/create-payment-intent", cfg.Payments.CreateIntent)
	app.Get("/payments/:email", verified, auth.RequireSelf("email"), cfg.Payments.History)
	app.Post("/payments", cfg.Payments.Reconcile)
}
