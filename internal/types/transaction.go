package types

import (
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/samber/lo"
)

// TransactionType is the direction of a wallet transaction
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

func (t TransactionType) Validate() error {
	allowedValues := []TransactionType{
		TransactionTypeCredit,
		TransactionTypeDebit,
	}
	if !lo.Contains(allowedValues, t) {
		return ierr.NewError("invalid transaction type").
			WithHint("Invalid transaction type").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TransactionSource is the category of business event that produced a
// wallet transaction
type TransactionSource string

const (
	TransactionSourceOrderPayment    TransactionSource = "ORDER_PAYMENT"
	TransactionSourcePackagePayment  TransactionSource = "PACKAGE_PAYMENT"
	TransactionSourceRefund          TransactionSource = "REFUND"
	TransactionSourceWalletFunding   TransactionSource = "WALLET_FUNDING"
	TransactionSourceAdminAdjustment TransactionSource = "ADMIN_ADJUSTMENT"
)

func (s TransactionSource) Validate() error {
	allowedValues := []TransactionSource{
		TransactionSourceOrderPayment,
		TransactionSourcePackagePayment,
		TransactionSourceRefund,
		TransactionSourceWalletFunding,
		TransactionSourceAdminAdjustment,
	}
	if !lo.Contains(allowedValues, s) {
		return ierr.NewError("invalid transaction source").
			WithHint("Invalid transaction source").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"source":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
