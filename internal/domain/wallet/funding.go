package wallet

import (
	"time"

	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
)

// Funding is a pending external top-up intent. It has no ledger effect
// until completed; the provider reference is globally unique and
// prevents duplicate funding intents.
type Funding struct {
	ID            string              `db:"id" json:"id"`
	UserID        string              `db:"user_id" json:"user_id"`
	Amount        decimal.Decimal     `db:"amount" json:"amount"`
	ProviderRef   string              `db:"provider_ref" json:"provider_ref"`
	FundingStatus types.FundingStatus `db:"funding_status" json:"funding_status"`
	PaidAt        *time.Time          `db:"paid_at" json:"paid_at,omitempty"`
	types.BaseModel
}

func (f *Funding) TableName() string {
	return "wallet_fundings"
}

func (f *Funding) Validate() error {
	if f.UserID == "" {
		return ierr.NewError("user_id is required").
			WithHint("User id is required").
			Mark(ierr.ErrValidation)
	}
	if f.ProviderRef == "" {
		return ierr.NewError("provider_ref is required").
			WithHint("Provider reference is required").
			Mark(ierr.ErrValidation)
	}
	if f.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("funding amount must be greater than 0").
			WithHint("Funding amount must be greater than 0").
			WithReportableDetails(map[string]interface{}{
				"amount": f.Amount,
			}).
			Mark(ierr.ErrInvalidAmount)
	}
	return f.FundingStatus.Validate()
}
