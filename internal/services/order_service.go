package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"clothshop/internal/models"
	"clothshop/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const defaultPayment = "COD"

// OrderEventPublisher announces placed orders to other systems.
type OrderEventPublisher interface {
	PublishOrderPlaced(entry models.OrderIndexEntry) error
}

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	Items   []models.CartItem `json:"items" validate:"required,min=1"`
	Total   float64           `json:"total"`
	Address string            `json:"address"`
	Payment *string           `json:"payment"`
}

// OrderService handles checkout and order lookups.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher OrderEventPublisher
	newID     func() string
	validate  *validator.Validate
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, publisher OrderEventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		newID:     repositories.NewOrderID,
		validate:  validator.New(),
	}
}

// Checkout persists a new order for user and appends it to the order index.
//
// The order document is written before the index entry. If the index append
// fails the order still exists and is fetchable by ID, but is missing from
// listings; the error is returned as-is and nothing is retried.
func (s *OrderService) Checkout(ctx context.Context, user string, req CheckoutRequest) (*models.Order, error) {
	if user == "" {
		return nil, &AuthError{Message: "unauthorized"}
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Message: "cart empty"}
	}
	count, err := itemCount(req.Items)
	if err != nil {
		return nil, err
	}

	payment := defaultPayment
	if req.Payment != nil {
		payment = *req.Payment
	}
	order := &models.Order{
		OrderID: s.newID(),
		User:    user,
		Items:   req.Items,
		Total:   req.Total,
		Address: req.Address,
		Payment: payment,
		Status:  models.OrderStatusPlaced,
	}

	if err := s.orderRepo.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order %s: %w", order.OrderID, err)
	}

	entry := models.OrderIndexEntry{
		OrderID: order.OrderID,
		User:    order.User,
		Total:   order.Total,
		Count:   count,
	}
	if err := s.orderRepo.AppendIndexEntry(ctx, entry); err != nil {
		zap.S().Errorf("Order %s saved but index append failed: %v", order.OrderID, err)
		return nil, fmt.Errorf("failed to index order %s: %w", order.OrderID, err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(entry); err != nil {
			zap.S().Warnf("Failed to publish order placed event for order %s: %v", order.OrderID, err)
		}
	}
	zap.S().Infow("Order placed", "order_id", order.OrderID, "user", order.User, "count", count)
	return order, nil
}

// ListOrdersForUser returns the index entries placed by user, in index order.
func (s *OrderService) ListOrdersForUser(ctx context.Context, user string) ([]models.OrderIndexEntry, error) {
	return s.orderRepo.ListByUser(ctx, user)
}

// ListAllOrders returns every index entry.
func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.OrderIndexEntry, error) {
	return s.orderRepo.ListAll(ctx)
}

// GetOrderDetail returns the full order document.
func (s *OrderService) GetOrderDetail(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrOrderNotFound) {
		return nil, &NotFoundError{Resource: "order", ID: id}
	}
	return order, err
}

// Health checks that order storage is reachable.
func (s *OrderService) Health(ctx context.Context) error {
	return s.orderRepo.Ping(ctx)
}

// itemCount sums the qty of every item; an item without qty counts as 1.
// The sum must be a finite number.
func itemCount(items []models.CartItem) (float64, error) {
	var count float64
	for i, item := range items {
		raw, ok := item["qty"]
		if !ok || raw == nil {
			count++
			continue
		}
		switch qty := raw.(type) {
		case float64:
			count += qty
		case int:
			count += float64(qty)
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(qty), 64)
			if err != nil {
				return 0, &ValidationError{Message: fmt.Sprintf("invalid qty for item %d", i)}
			}
			count += n
		default:
			return 0, &ValidationError{Message: fmt.Sprintf("invalid qty for item %d", i)}
		}
		if math.IsNaN(count) || math.IsInf(count, 0) {
			return 0, &ValidationError{Message: fmt.Sprintf("invalid qty for item %d", i)}
		}
	}
	return count, nil
}
