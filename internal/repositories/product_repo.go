package repositories

import (
	"clothshop/internal/models"
)

// ProductRepository defines read access to the product catalog.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id int) (*models.Product, error)
}
