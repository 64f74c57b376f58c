package payment

import (
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
)

// Payment records money collected for an order or package order.
// A destination has at most one payment row; its status tells the
// refund engine whether external money must be returned.
type Payment struct {
	ID                string                       `db:"id" json:"id"`
	UserID            string                       `db:"user_id" json:"user_id"`
	DestinationType   types.PaymentDestinationType `db:"destination_type" json:"destination_type"`
	DestinationID     string                       `db:"destination_id" json:"destination_id"`
	Amount            decimal.Decimal              `db:"amount" json:"amount"`
	PaymentStatus     types.PaymentStatus          `db:"payment_status" json:"payment_status"`
	ProviderReference string                       `db:"provider_reference" json:"provider_reference,omitempty"`
	types.BaseModel
}

func (p *Payment) TableName() string {
	return "payments"
}

func (p *Payment) Validate() error {
	if p.DestinationID == "" {
		return ierr.NewError("destination_id is required").
			WithHint("Destination id is required").
			Mark(ierr.ErrValidation)
	}
	if err := p.DestinationType.Validate(); err != nil {
		return err
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("payment amount must be greater than 0").
			WithHint("Payment amount must be greater than 0").
			WithReportableDetails(map[string]interface{}{
				"amount": p.Amount,
			}).
			Mark(ierr.ErrInvalidAmount)
	}
	return p.PaymentStatus.Validate()
}
