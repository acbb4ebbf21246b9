package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrDuplicateID   = errors.New("order id already stored")
)

// OrderRepository stores submitted orders
type OrderRepository interface {
	Save(ctx context.Context, order models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
}

// InMemoryOrderRepository keeps orders for the life of the process
type InMemoryOrderRepository struct {
	mu     sync.RWMutex
	orders []models.Order
	byID   map[string]int
}

// NewInMemoryOrderRepository creates an empty order store
func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{byID: make(map[string]int)}
}

// Save appends order
func (r *InMemoryOrderRepository) Save(ctx context.Context, order models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[order.ID]; exists {
		return ErrDuplicateID
	}
	r.byID[order.ID] = len(r.orders)
	r.orders = append(r.orders, order)
	return nil
}

// GetByID returns a stored order
func (r *InMemoryOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := r.byID[id]
	if !exists {
		return nil, ErrOrderNotFound
	}
	order := r.orders[i]
	return &order, nil
}

// List returns every order in submission order
func (r *InMemoryOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.Order(nil), r.orders...), nil
}
