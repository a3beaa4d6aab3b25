package repositories

import (
	"time"

	"github.com/google/uuid"
)

const orderIDTimeLayout = "20060102-150405"

// NewOrderID returns an ID of the form ORD-YYYYMMDD-HHMMSS-xxxxxxxx using local time.
// Uniqueness is probabilistic; storage is not consulted.
func NewOrderID() string {
	return newOrderID(time.Now())
}

func newOrderID(now time.Time) string {
	return "ORD-" + now.Format(orderIDTimeLayout) + "-" + uuid.New().String()[:8]
}
