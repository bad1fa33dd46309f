package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vertice/banking-demo/backend/internal/core/ports"
	"github.com/vertice/banking-demo/backend/internal/entities"
)

// withdrawalDescription is the ledger description for a redeemed
// cardless withdrawal order.
const withdrawalDescription = "CASH WITHDRAWAL - NO CARD"

type OrdersRepository interface {
	Insert(ctx context.Context, order *entities.WithdrawalOrder) error
	FindPendingByOTP(ctx context.Context, otp, phone string) (*entities.WithdrawalOrder, error)
	CompletePending(ctx context.Context, orderID int64) (bool, error)
}

// OrderService owns the withdrawal-order lifecycle: issuing an
// OTP-backed order and redeeming it at the cash machine.
type OrderService struct {
	logger *slog.Logger

	accounts     AccountsRepository
	orders       OrdersRepository
	transactions TransactionsRepository
	transactor   Transactor

	otp    OTPSource
	events TransactionEvents

	now func() time.Time
}

func NewOrderService(
	logger *slog.Logger,
	accounts AccountsRepository,
	orders OrdersRepository,
	transactions TransactionsRepository,
	transactor Transactor,
	otp OTPSource,
	events TransactionEvents,
) *OrderService {
	return &OrderService{
		logger:       logger,
		accounts:     accounts,
		orders:       orders,
		transactions: transactions,
		transactor:   transactor,
		otp:          otp,
		events:       events,
		now:          time.Now,
	}
}

// IssueOrder validates funds and persists a new PENDING withdrawal
// order expiring after the OTP window. Funds are checked but not
// reserved; redemption re-checks the balance. Returns the OTP, which
// the caller delivers out of band to the destination phone.
func (s *OrderService) IssueOrder(ctx context.Context, accountID int64, amount decimal.Decimal, phone string) (string, error) {
	if !amount.IsPositive() {
		return "", fmt.Errorf("withdrawal amount must be positive")
	}
	if phone == "" {
		return "", fmt.Errorf("destination phone is required")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", entities.ErrAccountNotFound
	}
	if account.Balance.LessThan(amount) {
		return "", entities.ErrInsufficientFunds
	}

	issuedAt := s.now()
	otp := s.otp.Code()

	order := &entities.WithdrawalOrder{
		AccountID:      accountID,
		OTPCode:        otp,
		Amount:         amount,
		Phone:          phone,
		ExpiresAt:      issuedAt.Add(ports.OrderTTL),
		ValidationHash: ValidationHash(otp, accountID, amount, issuedAt),
		State:          entities.OrderStatePending,
		CreatedAt:      issuedAt,
	}

	if err = s.orders.Insert(ctx, order); err != nil {
		return "", err
	}

	return otp, nil
}

// RedeemOrder consumes a pending order: it debits the source account,
// flips the order to COMPLETED and appends the ledger record, all in
// one transaction. Returns the amount withdrawn.
//
// The post-debit balance is computed once, from the locked balance
// read, and reused for both the account update and the ledger
// snapshot. The conditional state flip is the linearization point: of
// two concurrent redemptions of the same order, the loser sees zero
// updated rows and fails without effects.
func (s *OrderService) RedeemOrder(ctx context.Context, otp, phone string) (decimal.Decimal, error) {
	var (
		withdrawn decimal.Decimal
		record    *entities.TransactionRecord
	)

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.FindPendingByOTP(ctx, otp, phone)
		if err != nil {
			return err
		}
		if order == nil {
			return entities.ErrInvalidOrder
		}

		now := s.now()
		if order.ExpiresAt.Before(now) {
			// The order stays PENDING; expiration is only ever observed
			// here, never swept in the background.
			return entities.ErrOrderExpired
		}

		balance, found, err := s.accounts.BalanceForUpdate(ctx, order.AccountID)
		if err != nil {
			return err
		}
		if !found {
			return entities.ErrAccountNotFound
		}
		if balance.LessThan(order.Amount) {
			return entities.ErrInsufficientFunds
		}

		newBalance := balance.Sub(order.Amount)

		if err = s.accounts.SetBalance(ctx, order.AccountID, newBalance); err != nil {
			return err
		}

		completed, err := s.orders.CompletePending(ctx, order.ID)
		if err != nil {
			return err
		}
		if !completed {
			return entities.ErrInvalidOrder
		}

		record = &entities.TransactionRecord{
			Reference:        uuid.New().String(),
			AccountID:        order.AccountID,
			Type:             entities.TransactionDebit,
			Amount:           order.Amount.Neg(),
			Description:      withdrawalDescription,
			CreatedAt:        now,
			ResultingBalance: newBalance,
		}
		if err = s.transactions.Append(ctx, record); err != nil {
			return err
		}

		withdrawn = order.Amount

		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logger.Info("Withdrawal order redeemed",
		"account_id", record.AccountID, "amount", withdrawn.String(), "reference", record.Reference)

	if s.events != nil {
		s.events.TransactionAppended(record)
	}

	return withdrawn, nil
}
