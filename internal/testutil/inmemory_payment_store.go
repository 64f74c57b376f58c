package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mealcart/mealcart/internal/domain/payment"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/types"
)

// InMemoryPaymentStore implements payment.Repository for tests
type InMemoryPaymentStore struct {
	mu       sync.RWMutex
	payments map[string]*payment.Payment
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		payments: make(map[string]*payment.Payment),
	}
}

func (r *InMemoryPaymentStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = make(map[string]*payment.Payment)
}

func (r *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.payments {
		if existing.DestinationType == p.DestinationType && existing.DestinationID == p.DestinationID {
			return ierr.NewError("payment already exists").
				WithHint("A payment already exists for this destination").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, exists := r.payments[id]; exists {
		cp := *p
		return &cp, nil
	}
	return nil, ierr.NewError("payment not found").
		WithHint("Payment not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryPaymentStore) GetByDestination(ctx context.Context, destinationType types.PaymentDestinationType, destinationID string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payments {
		if p.DestinationType == destinationType && p.DestinationID == destinationID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ierr.NewError("payment not found").
		WithHint("Payment not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryPaymentStore) UpdateStatus(ctx context.Context, id string, status types.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.payments[id]
	if !exists {
		return ierr.NewError("payment not found").
			WithHint("Payment not found").
			Mark(ierr.ErrNotFound)
	}
	p.PaymentStatus = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}
