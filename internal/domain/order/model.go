package order

import (
	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
)

// Order is the vendor-fulfilled order aggregate as seen by the refund
// engine: the ledger only reads its payment linkage and writes its
// payout eligibility flag.
type Order struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"user_id"`
	VendorID       string          `db:"vendor_id" json:"vendor_id"`
	Total          decimal.Decimal `db:"total" json:"total"`
	PayoutEligible bool            `db:"payout_eligible" json:"payout_eligible"`
	types.BaseModel
}

func (o *Order) TableName() string {
	return "orders"
}

// PackageOrder is a bulk meal-package purchase. It follows the same
// refund reconciliation path as a regular order but has no vendor
// payout of its own.
type PackageOrder struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"user_id"`
	Total          decimal.Decimal `db:"total" json:"total"`
	PayoutEligible bool            `db:"payout_eligible" json:"payout_eligible"`
	types.BaseModel
}

func (p *PackageOrder) TableName() string {
	return "package_orders"
}
