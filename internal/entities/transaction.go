package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction record types. Debits carry a negative amount.
const (
	TransactionDebit  = "DEBIT"
	TransactionCredit = "CREDIT"
)

// TransactionRecord is an append-only ledger entry. ResultingBalance
// snapshots the account balance immediately after the movement it
// records; for a completed withdrawal order that snapshot and the
// account update derive from the same post-debit value.
type TransactionRecord struct {
	ID               int64           `db:"id" json:"id"`
	Reference        string          `db:"reference" json:"reference"`
	AccountID        int64           `db:"account_id" json:"account_id"`
	Type             string          `db:"type" json:"type"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	Description      string          `db:"description" json:"description"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	ResultingBalance decimal.Decimal `db:"resulting_balance" json:"resulting_balance"`
}
