package order

import "context"

// Repository defines the read/write surface the refund engine needs
// over orders and package orders
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	SetOrderPayoutEligibility(ctx context.Context, id string, eligible bool) error

	CreatePackageOrder(ctx context.Context, p *PackageOrder) error
	GetPackageOrder(ctx context.Context, id string) (*PackageOrder, error)
	SetPackageOrderPayoutEligibility(ctx context.Context, id string, eligible bool) error
}
