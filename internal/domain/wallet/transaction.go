package wallet

import (
	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
)

// Transaction is an immutable ledger row. Rows are write-once facts:
// never updated or deleted after creation, created only by the wallet
// service. Amount is always positive; Type carries the direction.
type Transaction struct {
	ID            string                  `db:"id" json:"id"`
	WalletID      string                  `db:"wallet_id" json:"wallet_id"`
	UserID        string                  `db:"user_id" json:"user_id"`
	Type          types.TransactionType   `db:"type" json:"type"`
	Amount        decimal.Decimal         `db:"amount" json:"amount"`
	BalanceBefore decimal.Decimal         `db:"balance_before" json:"balance_before"`
	BalanceAfter  decimal.Decimal         `db:"balance_after" json:"balance_after"`
	SourceType    types.TransactionSource `db:"source_type" json:"source_type"`
	SourceID      string                  `db:"source_id" json:"source_id,omitempty"`
	Reference     string                  `db:"reference" json:"reference"`
	Description   string                  `db:"description" json:"description,omitempty"`
	Metadata      types.Metadata          `db:"metadata" json:"metadata,omitempty"`
	types.BaseModel
}

func (t *Transaction) TableName() string {
	return "wallet_transactions"
}
