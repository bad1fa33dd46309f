package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal order states. An order is created PENDING and flips to
// COMPLETED exactly once, at redemption. Expired orders are never
// auto-transitioned; they stay PENDING until a redemption attempt
// observes the expiration.
const (
	OrderStatePending   = "PENDING"
	OrderStateCompleted = "COMPLETED"
)

// WithdrawalOrder authorizes a single cardless cash withdrawal,
// identified at the cash machine by OTP code plus destination phone.
type WithdrawalOrder struct {
	ID             int64           `db:"id" json:"id"`
	AccountID      int64           `db:"account_id" json:"account_id"`
	OTPCode        string          `db:"otp_code" json:"-"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	Phone          string          `db:"phone" json:"phone"`
	ExpiresAt      time.Time       `db:"expires_at" json:"expires_at"`
	ValidationHash string          `db:"validation_hash" json:"-"`
	State          string          `db:"state" json:"state"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
