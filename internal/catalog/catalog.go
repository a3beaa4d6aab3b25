// Package catalog holds the fixed product list loaded once at startup.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"clothshop/internal/models"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var errEmptyCatalog = errors.New("empty or invalid product list")

// Catalog is an immutable product list. It implements repositories.ProductRepository.
type Catalog struct {
	products []models.Product
	byID     map[int]int
}

// Fallback returns the built-in catalog used when the bundled document cannot be loaded.
func Fallback() []models.Product {
	return []models.Product{
		{ID: 101, Name: "Cotton T-Shirt", Brand: "UrbanCo", Price: 499, Size: []string{"S", "M", "L"}, Img: "https://picsum.photos/id/237/480/640"},
		{ID: 102, Name: "Slim Fit Jeans", Brand: "DenimX", Price: 1499, Size: []string{"30", "32", "34"}, Img: "https://picsum.photos/id/1005/480/640"},
		{ID: 103, Name: "Athleisure Hoodie", Brand: "Move", Price: 1299, Size: []string{"M", "L", "XL"}, Img: "https://picsum.photos/id/1027/480/640"},
		{ID: 104, Name: "Summer Dress", Brand: "Flora", Price: 899, Size: []string{"S", "M", "L"}, Img: "https://picsum.photos/id/1011/480/640"},
	}
}

// Load reads the product document at path. Any read, parse or validation
// failure is logged and the fallback catalog is used instead.
func Load(path string) *Catalog {
	products, err := readProducts(path)
	if err != nil {
		zap.S().Warnf("Couldn't load %s: %v -> using fallback catalog.", path, err)
		products = Fallback()
	}
	return New(products)
}

// New builds a catalog from products.
func New(products []models.Product) *Catalog {
	c := &Catalog{
		products: make([]models.Product, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for i, p := range products {
		p.Size = append([]string(nil), p.Size...)
		c.products[i] = p
		if _, dup := c.byID[p.ID]; !dup {
			c.byID[p.ID] = i
		}
	}
	return c
}

func readProducts(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("invalid product document: %w", err)
	}
	if len(products) == 0 {
		return nil, errEmptyCatalog
	}
	validate := validator.New()
	for i := range products {
		if err := validate.Struct(products[i]); err != nil {
			return nil, fmt.Errorf("product at index %d: %w", i, err)
		}
	}
	return products, nil
}

// GetAll returns a copy of every product in catalog order.
func (c *Catalog) GetAll() ([]models.Product, error) {
	out := make([]models.Product, len(c.products))
	for i, p := range c.products {
		p.Size = append([]string(nil), p.Size...)
		out[i] = p
	}
	return out, nil
}

// GetByID returns the product with id.
func (c *Catalog) GetByID(id int) (*models.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d not found", id)
	}
	p := c.products[i]
	p.Size = append([]string(nil), p.Size...)
	return &p, nil
}
