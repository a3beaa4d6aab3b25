package models

// OrderStatusPlaced is the status every new order is written with.
const OrderStatusPlaced = "PLACED"

// CartItem is a client-supplied cart line. Only "qty" is interpreted.
type CartItem map[string]interface{}

// Order represents a customer order as stored at orders/<order_id>.json.
type Order struct {
	OrderID string     `json:"order_id"`
	User    string     `json:"user"`
	Items   []CartItem `json:"items"`
	Total   float64    `json:"total"`
	Address string     `json:"address"`
	Payment string     `json:"payment"`
	Status  string     `json:"status"` // always "PLACED"; no transitions
}

// OrderIndexEntry is the summary appended to orders/index.json.
type OrderIndexEntry struct {
	OrderID string  `json:"order_id"`
	User    string  `json:"user"`
	Total   float64 `json:"total"`
	Count   float64 `json:"count"`
}
