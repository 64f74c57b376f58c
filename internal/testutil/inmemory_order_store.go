package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mealcart/mealcart/internal/domain/order"
	ierr "github.com/mealcart/mealcart/internal/errors"
)

// InMemoryOrderStore implements order.Repository for tests
type InMemoryOrderStore struct {
	mu            sync.RWMutex
	orders        map[string]*order.Order
	packageOrders map[string]*order.PackageOrder
}

func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		orders:        make(map[string]*order.Order),
		packageOrders: make(map[string]*order.PackageOrder),
	}
}

func (r *InMemoryOrderStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = make(map[string]*order.Order)
	r.packageOrders = make(map[string]*order.PackageOrder)
}

func (r *InMemoryOrderStore) CreateOrder(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *InMemoryOrderStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if o, exists := r.orders[id]; exists {
		cp := *o
		return &cp, nil
	}
	return nil, ierr.NewError("order not found").
		WithHint("Order not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryOrderStore) SetOrderPayoutEligibility(ctx context.Context, id string, eligible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, exists := r.orders[id]
	if !exists {
		return ierr.NewError("order not found").
			WithHint("Order not found").
			Mark(ierr.ErrNotFound)
	}
	o.PayoutEligible = eligible
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryOrderStore) CreatePackageOrder(ctx context.Context, p *order.PackageOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *p
	r.packageOrders[p.ID] = &cp
	return nil
}

func (r *InMemoryOrderStore) GetPackageOrder(ctx context.Context, id string) (*order.PackageOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, exists := r.packageOrders[id]; exists {
		cp := *p
		return &cp, nil
	}
	return nil, ierr.NewError("package order not found").
		WithHint("Package order not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryOrderStore) SetPackageOrderPayoutEligibility(ctx context.Context, id string, eligible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.packageOrders[id]
	if !exists {
		return ierr.NewError("package order not found").
			WithHint("Package order not found").
			Mark(ierr.ErrNotFound)
	}
	p.PayoutEligible = eligible
	p.UpdatedAt = time.Now().UTC()
	return nil
}
