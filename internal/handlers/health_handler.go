package handlers

import (
	"clothshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports whether order storage is reachable.
type HealthHandler struct {
	orders *services.OrderService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(orders *services.OrderService) *HealthHandler {
	return &HealthHandler{orders: orders}
}

// RegisterRoutes registers GET /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers {ok:true}, or 500 {ok:false, error} when storage fails.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	if err := h.orders.Health(c.UserContext()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}
