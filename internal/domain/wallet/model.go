package wallet

import (
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
)

// Wallet represents a per-user monetary balance backed by the ledger.
// One wallet per user, created lazily on first access. The balance is a
// derived cache: it must equal the sum of credits minus the sum of
// debits over the wallet's transaction log at all times.
type Wallet struct {
	ID           string             `db:"id" json:"id"`
	UserID       string             `db:"user_id" json:"user_id"`
	Balance      decimal.Decimal    `db:"balance" json:"balance"`
	WalletStatus types.WalletStatus `db:"wallet_status" json:"wallet_status"`
	Metadata     types.Metadata     `db:"metadata" json:"metadata"`
	types.BaseModel
}

func (w *Wallet) TableName() string {
	return "wallets"
}

func (w *Wallet) Validate() error {
	if w.UserID == "" {
		return ierr.NewError("user_id is required").
			WithHint("User id is required").
			Mark(ierr.ErrValidation)
	}
	if w.Balance.IsNegative() {
		return ierr.NewError("wallet balance cannot be negative").
			WithHint("Wallet balance cannot be negative").
			WithReportableDetails(map[string]interface{}{
				"wallet_id": w.ID,
				"balance":   w.Balance,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// NewWallet builds a zero-balance active wallet for a user
func NewWallet(userID string, base types.BaseModel) *Wallet {
	return &Wallet{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET),
		UserID:       userID,
		Balance:      decimal.Zero,
		WalletStatus: types.WalletStatusActive,
		Metadata:     types.Metadata{},
		BaseModel:    base,
	}
}
