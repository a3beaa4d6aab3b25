package models

// Product represents an item in the storefront catalog.
type Product struct {
	ID    int      `json:"id" validate:"required"`
	Name  string   `json:"name" validate:"required"`
	Brand string   `json:"brand"`
	Price float64  `json:"price" validate:"gte=0"`
	Size  []string `json:"size"`
	Img   string   `json:"img"`
}
