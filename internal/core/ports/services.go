package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vertice/banking-demo/backend/internal/entities"
)

// OrderService defines the withdrawal-order operations.
type OrderService interface {
	IssueOrder(ctx context.Context, accountID int64, amount decimal.Decimal, phone string) (string, error)
	RedeemOrder(ctx context.Context, otp, phone string) (decimal.Decimal, error)
}

// WalletService defines the DeUna wallet operations.
type WalletService interface {
	Recharge(ctx context.Context, accountID int64, amount decimal.Decimal) error
	PaymentQR(ctx context.Context, customerID int64) (*entities.PaymentQR, error)
	ScanPrefill(ctx context.Context, payerCustomerID, payeeCustomerID int64) (*entities.ScanPrefill, error)
}

// AccountService defines the banca-web account page operations.
type AccountService interface {
	GetSummary(ctx context.Context, customerID int64) (*entities.AccountSummary, error)
	GetHistory(ctx context.Context, customerID int64, limit int, txType *string) ([]entities.TransactionRecord, error)
}
