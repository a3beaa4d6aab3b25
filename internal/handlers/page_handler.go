package handlers

import (
	"clothshop/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// PageHandler serves the shopper pages.
type PageHandler struct {
	gate *middleware.Gate
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(gate *middleware.Gate) *PageHandler {
	return &PageHandler{gate: gate}
}

// RegisterRoutes registers /shop and /orders.
func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/shop", h.page("index"))
	router.Get("/orders", h.page("orders"))
}

func (h *PageHandler) page(view string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := h.gate.SessionUser(c)
		if user == "" {
			return c.Redirect("/")
		}
		return c.Render(view, fiber.Map{"username": user})
	}
}
