package repositories

import (
	"context"
	"errors"

	"clothshop/internal/models"
)

// ErrOrderNotFound is returned when no order document exists for an ID.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order persistence.
type OrderRepository interface {
	// SaveOrder writes the full order document.
	SaveOrder(ctx context.Context, order *models.Order) error
	// AppendIndexEntry adds a summary to the end of the shared order index.
	AppendIndexEntry(ctx context.Context, entry models.OrderIndexEntry) error
	ListAll(ctx context.Context) ([]models.OrderIndexEntry, error)
	ListByUser(ctx context.Context, user string) ([]models.OrderIndexEntry, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// Ping checks that the order collection is reachable.
	Ping(ctx context.Context) error
}

func filterByUser(entries []models.OrderIndexEntry, user string) []models.OrderIndexEntry {
	filtered := make([]models.OrderIndexEntry, 0, len(entries))
	for _, e := range entries {
		if e.User == user {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
