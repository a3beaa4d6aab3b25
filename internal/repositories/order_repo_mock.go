package repositories

import (
	"context"
	"fmt"
	"sync"

	"clothshop/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// Unlike the WebDAV repository its index appends never lose entries.
type MockOrderRepository struct {
	orders map[string]models.Order
	index  []models.OrderIndexEntry
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// SaveOrder stores a copy of the order.
func (r *MockOrderRepository) SaveOrder(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[order.OrderID] = *order
	return nil
}

// AppendIndexEntry adds entry to the end of the index.
func (r *MockOrderRepository) AppendIndexEntry(_ context.Context, entry models.OrderIndexEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index = append(r.index, entry)
	return nil
}

// ListAll returns all index entries.
func (r *MockOrderRepository) ListAll(_ context.Context) ([]models.OrderIndexEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]models.OrderIndexEntry, len(r.index))
	copy(entries, r.index)
	return entries, nil
}

// ListByUser returns the index entries for user.
func (r *MockOrderRepository) ListByUser(_ context.Context, user string) ([]models.OrderIndexEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return filterByUser(r.index, user), nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	return &order, nil
}

// Ping always succeeds.
func (r *MockOrderRepository) Ping(context.Context) error {
	return nil
}
