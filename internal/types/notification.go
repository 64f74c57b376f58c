package types

import (
	"encoding/json"
	"time"
)

// NotificationEvent represents a notification to be delivered to the
// dispatcher. Delivery is fire-and-forget: publishing happens only after
// the financial transaction commits and a failed dispatch never rolls
// back the ledger mutation.
type NotificationEvent struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// wallet event names
const (
	NotificationEventWalletCredited        = "wallet.credited"
	NotificationEventWalletDebited         = "wallet.debited"
	NotificationEventWalletFundingComplete = "wallet.funding.completed"
)

// refund event names
const (
	NotificationEventOrderRefunded        = "order.refunded"
	NotificationEventPackageOrderRefunded = "package_order.refunded"
)
