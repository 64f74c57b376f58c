package dto

import (
	"github.com/shopspring/decimal"
)

// RefundResponse is the outcome of refund reconciliation. Amount is the
// full reconciled sum returned to the wallet; AlreadyRefunded reports a
// replayed invocation.
type RefundResponse struct {
	Amount          decimal.Decimal `json:"amount"`
	AlreadyRefunded bool            `json:"already_refunded"`
}
