package payout

import (
	"time"

	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
)

// Payout is a scheduled transfer of an order's proceeds to the vendor.
// Refunding an order cancels any payout that has not yet been paid;
// a payout already in the PAID state is never touched.
type Payout struct {
	ID           string             `db:"id" json:"id"`
	VendorID     string             `db:"vendor_id" json:"vendor_id"`
	OrderID      string             `db:"order_id" json:"order_id"`
	Amount       decimal.Decimal    `db:"amount" json:"amount"`
	PayoutStatus types.PayoutStatus `db:"payout_status" json:"payout_status"`
	ScheduledFor *time.Time         `db:"scheduled_for" json:"scheduled_for,omitempty"`
	PaidAt       *time.Time         `db:"paid_at" json:"paid_at,omitempty"`
	types.BaseModel
}

func (p *Payout) TableName() string {
	return "payouts"
}
