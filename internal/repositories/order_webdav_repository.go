package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"clothshop/internal/models"
	"clothshop/internal/webdav"
)

const (
	ordersFolder    = "orders"
	orderIndexPath  = "orders/index.json"
	orderDocPattern = "orders/%s.json"
)

// DocumentStore is the subset of the storage client the repository needs.
type DocumentStore interface {
	EnsureFolder(ctx context.Context, path string) error
	GetDocument(ctx context.Context, path string, dest interface{}) error
	PutDocument(ctx context.Context, path string, value interface{}) error
}

// WebDAVOrderRepository keeps one JSON document per order plus a shared
// index document on a WebDAV-style store.
//
// The index is updated by reading the whole array and writing it back.
// Concurrent appends can therefore lose entries; the order documents
// themselves are never affected.
type WebDAVOrderRepository struct {
	store DocumentStore

	serialize bool
	indexMu   sync.Mutex
}

// WebDAVOption configures a WebDAVOrderRepository.
type WebDAVOption func(*WebDAVOrderRepository)

// WithSerializedIndex makes index appends from this process run one at a time.
// Writers in other processes can still race.
func WithSerializedIndex() WebDAVOption {
	return func(r *WebDAVOrderRepository) {
		r.serialize = true
	}
}

// NewWebDAVOrderRepository creates a new instance of WebDAVOrderRepository.
func NewWebDAVOrderRepository(store DocumentStore, opts ...WebDAVOption) *WebDAVOrderRepository {
	r := &WebDAVOrderRepository{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SaveOrder ensures the orders folder and writes orders/<id>.json.
// Nothing is rolled back if the write fails after the folder was created.
func (r *WebDAVOrderRepository) SaveOrder(ctx context.Context, order *models.Order) error {
	if err := r.store.EnsureFolder(ctx, ordersFolder); err != nil {
		return err
	}
	return r.store.PutDocument(ctx, fmt.Sprintf(orderDocPattern, order.OrderID), order)
}

// AppendIndexEntry reads orders/index.json, appends entry and writes the array back.
func (r *WebDAVOrderRepository) AppendIndexEntry(ctx context.Context, entry models.OrderIndexEntry) error {
	if r.serialize {
		r.indexMu.Lock()
		defer r.indexMu.Unlock()
	}
	entries, err := r.readIndex(ctx)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	return r.store.PutDocument(ctx, orderIndexPath, entries)
}

// ListAll returns every index entry in append order.
func (r *WebDAVOrderRepository) ListAll(ctx context.Context) ([]models.OrderIndexEntry, error) {
	if err := r.store.EnsureFolder(ctx, ordersFolder); err != nil {
		return nil, err
	}
	return r.readIndex(ctx)
}

// ListByUser returns the index entries placed by user, in append order.
func (r *WebDAVOrderRepository) ListByUser(ctx context.Context, user string) ([]models.OrderIndexEntry, error) {
	entries, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterByUser(entries, user), nil
}

// GetByID returns the full order document.
func (r *WebDAVOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.store.GetDocument(ctx, fmt.Sprintf(orderDocPattern, id), &order)
	if errors.Is(err, webdav.ErrNotFound) {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Ping ensures the orders folder exists.
func (r *WebDAVOrderRepository) Ping(ctx context.Context) error {
	return r.store.EnsureFolder(ctx, ordersFolder)
}

func (r *WebDAVOrderRepository) readIndex(ctx context.Context) ([]models.OrderIndexEntry, error) {
	var entries []models.OrderIndexEntry
	err := r.store.GetDocument(ctx, orderIndexPath, &entries)
	if errors.Is(err, webdav.ErrNotFound) {
		return []models.OrderIndexEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.OrderIndexEntry{}
	}
	return entries, nil
}
