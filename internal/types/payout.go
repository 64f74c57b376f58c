package types

import (
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/samber/lo"
)

// PayoutStatus represents the state of a scheduled vendor disbursement.
// FAILED is terminal once a refund occurs; a refunded order never gets a
// retried payout.
type PayoutStatus string

const (
	PayoutStatusScheduled  PayoutStatus = "SCHEDULED"
	PayoutStatusProcessing PayoutStatus = "PROCESSING"
	PayoutStatusPaid       PayoutStatus = "PAID"
	PayoutStatusFailed     PayoutStatus = "FAILED"
)

func (s PayoutStatus) Validate() error {
	allowed := []PayoutStatus{
		PayoutStatusScheduled,
		PayoutStatusProcessing,
		PayoutStatusPaid,
		PayoutStatusFailed,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payout status").
			WithHint("Invalid payout status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
