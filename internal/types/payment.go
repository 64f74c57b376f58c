package types

import (
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/samber/lo"
)

// PaymentStatus represents the status of a gateway payment.
// Only COMPLETED payments count toward a refundable amount.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusCompleted,
		PaymentStatusFailed,
		PaymentStatusRefunded,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payment status").
			WithHint("Invalid payment status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentDestinationType indicates what entity a payment was made for
type PaymentDestinationType string

const (
	PaymentDestinationTypeOrder        PaymentDestinationType = "ORDER"
	PaymentDestinationTypePackageOrder PaymentDestinationType = "PACKAGE_ORDER"
)

func (t PaymentDestinationType) Validate() error {
	allowed := []PaymentDestinationType{
		PaymentDestinationTypeOrder,
		PaymentDestinationTypePackageOrder,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid payment destination type").
			WithHint("Invalid payment destination type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
