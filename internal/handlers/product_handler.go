package handlers

import (
	"clothshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:id<int>", h.HandleGetProductByID)
}

// HandleGetProducts returns the whole catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleGetProductByID returns one product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	product, err := h.service.GetProductByID(id)
	if err != nil {
		return &services.NotFoundError{Resource: "product", ID: c.Params("id")}
	}
	return c.JSON(product)
}
