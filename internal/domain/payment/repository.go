package payment

import (
	"context"

	"github.com/mealcart/mealcart/internal/types"
)

// Repository defines the interface for payment persistence operations
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	// GetByDestination returns the payment collected for a destination,
	// or ErrNotFound when nothing was ever collected
	GetByDestination(ctx context.Context, destinationType types.PaymentDestinationType, destinationID string) (*Payment, error)
	UpdateStatus(ctx context.Context, id string, status types.PaymentStatus) error
}
