package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mealcart/mealcart/internal/domain/payout"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/types"
)

// InMemoryPayoutStore implements payout.Repository for tests
type InMemoryPayoutStore struct {
	mu      sync.RWMutex
	payouts map[string]*payout.Payout
}

func NewInMemoryPayoutStore() *InMemoryPayoutStore {
	return &InMemoryPayoutStore{
		payouts: make(map[string]*payout.Payout),
	}
}

func (r *InMemoryPayoutStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payouts = make(map[string]*payout.Payout)
}

func (r *InMemoryPayoutStore) Create(ctx context.Context, p *payout.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *p
	r.payouts[p.ID] = &cp
	return nil
}

func (r *InMemoryPayoutStore) Get(ctx context.Context, id string) (*payout.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, exists := r.payouts[id]; exists {
		cp := *p
		return &cp, nil
	}
	return nil, ierr.NewError("payout not found").
		WithHint("Payout not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryPayoutStore) ListByOrder(ctx context.Context, orderID string) ([]*payout.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*payout.Payout
	for _, p := range r.payouts {
		if p.OrderID == orderID {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *InMemoryPayoutStore) UpdateStatus(ctx context.Context, id string, status types.PayoutStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.payouts[id]
	if !exists {
		return ierr.NewError("payout not found").
			WithHint("Payout not found").
			Mark(ierr.ErrNotFound)
	}
	p.PayoutStatus = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryPayoutStore) MarkFailedByOrder(ctx context.Context, orderID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cancelled := 0
	for _, p := range r.payouts {
		if p.OrderID == orderID &&
			p.PayoutStatus != types.PayoutStatusPaid &&
			p.PayoutStatus != types.PayoutStatusFailed {
			p.PayoutStatus = types.PayoutStatusFailed
			p.UpdatedAt = time.Now().UTC()
			cancelled++
		}
	}
	return cancelled, nil
}
