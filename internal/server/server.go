// Package server assembles the fiber application.
package server

import (
	"net/http"

	"clothshop/internal/handlers"
	"clothshop/internal/middleware"
	"clothshop/internal/services"
	"clothshop/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
)

// Deps are the services the routes are built on.
type Deps struct {
	Products  *services.ProductService
	Orders    *services.OrderService
	Auth      *services.AuthService
	SecretKey string
	// RequestLog enables the per-request access log.
	RequestLog bool
}

// NewApp builds the fiber app with every route registered.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "clothshop",
		Views:                 web.NewViews(),
		ErrorHandler:          handlers.ErrorHandler,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if deps.RequestLog {
		app.Use(logger.New())
	}
	app.Use(middleware.EncryptCookies(deps.SecretKey))
	app.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(web.Static()),
	}))

	gate := middleware.NewGate(middleware.NewSessionStore(), deps.Auth)

	authHandler := handlers.NewAuthHandler(deps.Auth, gate)
	pageHandler := handlers.NewPageHandler(gate)
	productHandler := handlers.NewProductHandler(deps.Products)
	orderHandler := handlers.NewOrderHandler(deps.Orders)
	healthHandler := handlers.NewHealthHandler(deps.Orders)

	authHandler.RegisterPageRoutes(app)
	pageHandler.RegisterRoutes(app)

	api := app.Group("/api")
	productHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api, gate)
	healthHandler.RegisterRoutes(api)
	authHandler.RegisterAPIRoutes(api)

	return app
}
