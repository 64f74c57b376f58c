package payout

import (
	"context"

	"github.com/mealcart/mealcart/internal/types"
)

// Repository defines the interface for payout persistence operations
type Repository interface {
	Create(ctx context.Context, p *Payout) error
	Get(ctx context.Context, id string) (*Payout, error)
	ListByOrder(ctx context.Context, orderID string) ([]*Payout, error)
	UpdateStatus(ctx context.Context, id string, status types.PayoutStatus) error
	// MarkFailedByOrder cancels every payout for the order that is not
	// already PAID. Returns the number of payouts cancelled.
	MarkFailedByOrder(ctx context.Context, orderID string) (int, error)
}
