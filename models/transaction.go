package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts go over the wire as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Transaction records a single income or expense entry.
//
// CategoryID keeps the raw category reference; the category may be deleted
// later, in which case readers label it "Unknown". Type and Date are stored
// exactly as the client sent them.
type Transaction struct {
	ID         string          `gorm:"primaryKey;size:36" json:"_id"`
	CategoryID string          `gorm:"size:36;not null;index" json:"category"`
	Amount     decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Type       string          `gorm:"size:64;not null" json:"type"`
	Date       *string         `gorm:"size:64" json:"date"`
	UserID     string          `gorm:"size:36;not null;index:idx_transactions_user_created,priority:1" json:"user_id"`
	CreatedAt  time.Time       `gorm:"not null;index:idx_transactions_user_created,priority:2" json:"created_at"`
}

// UnknownCategory labels transactions whose category no longer exists.
const UnknownCategory = "Unknown"

// TransactionView is a Transaction with its category resolved to a name.
type TransactionView struct {
	Transaction
	Category string `json:"category"`
}
