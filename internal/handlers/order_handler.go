package handlers

import (
	"clothshop/internal/middleware"
	"clothshop/internal/services"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// OrderHandler handles checkout and order listing.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the shopper and admin order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, gate *middleware.Gate) {
	router.Post("/checkout", gate.RequireUser(), h.HandleCheckout)
	router.Get("/orders", gate.RequireUser(), h.HandleGetMyOrders)

	admin := router.Group("/admin", gate.RequireAdmin())
	admin.Get("/orders", h.HandleGetAllOrders)
	admin.Get("/order/:id", h.HandleGetOrderDetail)
}

// HandleCheckout places an order for the session user.
// The body is parsed as JSON whatever its Content-Type says.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(c.Body(), &req); err != nil {
		zap.S().Debugf("Error parsing checkout body: %v", err)
		return &services.ValidationError{Message: "invalid request body"}
	}

	order, err := h.service.Checkout(c.UserContext(), middleware.Username(c), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"ok":       true,
		"order_id": order.OrderID,
	})
}

// HandleGetMyOrders returns the caller's order index entries.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	rows, err := h.service.ListOrdersForUser(c.UserContext(), middleware.Username(c))
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// HandleGetAllOrders returns every order index entry.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	rows, err := h.service.ListAllOrders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// HandleGetOrderDetail returns one full order document.
func (h *OrderHandler) HandleGetOrderDetail(c *fiber.Ctx) error {
	order, err := h.service.GetOrderDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}
