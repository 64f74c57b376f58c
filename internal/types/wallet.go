package types

import (
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/samber/lo"
)

// WalletStatus represents the current state of a wallet
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "active"
	WalletStatusFrozen WalletStatus = "frozen"
	WalletStatusClosed WalletStatus = "closed"
)

func (s WalletStatus) Validate() error {
	allowedValues := []WalletStatus{
		WalletStatusActive,
		WalletStatusFrozen,
		WalletStatusClosed,
	}
	if !lo.Contains(allowedValues, s) {
		return ierr.NewError("invalid wallet status").
			WithHint("Invalid wallet status").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// FundingStatus represents the state of an external wallet top-up intent.
// PENDING is the only non-terminal state.
type FundingStatus string

const (
	FundingStatusPending   FundingStatus = "PENDING"
	FundingStatusCompleted FundingStatus = "COMPLETED"
	FundingStatusFailed    FundingStatus = "FAILED"
)

func (s FundingStatus) Validate() error {
	allowedValues := []FundingStatus{
		FundingStatusPending,
		FundingStatusCompleted,
		FundingStatusFailed,
	}
	if !lo.Contains(allowedValues, s) {
		return ierr.NewError("invalid funding status").
			WithHint("Invalid funding status").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether no further transitions are allowed
func (s FundingStatus) IsTerminal() bool {
	return s == FundingStatusCompleted || s == FundingStatusFailed
}

// WalletTransactionFilter filters wallet transaction listings
type WalletTransactionFilter struct {
	WalletID   string             `json:"wallet_id,omitempty" form:"wallet_id"`
	Type       *TransactionType   `json:"type,omitempty" form:"type"`
	SourceType *TransactionSource `json:"source_type,omitempty" form:"source_type"`
	SourceID   string             `json:"source_id,omitempty" form:"source_id"`
	Limit      int                `json:"limit,omitempty" form:"limit"`
	Offset     int                `json:"offset,omitempty" form:"offset"`
}

// GetLimit returns the page size with a sane default
func (f *WalletTransactionFilter) GetLimit() int {
	if f == nil || f.Limit <= 0 {
		return 50
	}
	return f.Limit
}

// GetOffset returns the page offset
func (f *WalletTransactionFilter) GetOffset() int {
	if f == nil || f.Offset < 0 {
		return 0
	}
	return f.Offset
}
