package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a customer's main balance-holding product.
type Account struct {
	ID         int64           `db:"id" json:"id"`
	CustomerID int64           `db:"customer_id" json:"customer_id"`
	Number     string          `db:"number" json:"number"`
	Balance    decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// AccountSummary is the banca-web view of an account: the account row
// plus the holder display name and the DeUna balance (zero when the
// wallet has never been funded).
type AccountSummary struct {
	Account
	HolderName   string          `db:"holder_name" json:"holder_name"`
	DeunaBalance decimal.Decimal `db:"deuna_balance" json:"deuna_balance"`
}
