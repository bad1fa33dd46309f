package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeunaWallet is the auxiliary spendable balance funded by debiting the
// main account. One row per account, created on first recharge.
type DeunaWallet struct {
	AccountID int64           `db:"account_id" json:"account_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
