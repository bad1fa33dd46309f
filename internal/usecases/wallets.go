package usecases

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/vertice/banking-demo/backend/internal/entities"
)

// rechargeDescription is the ledger description for a DeUna recharge
// debit against the main account.
const rechargeDescription = "DEUNA RECHARGE"

const qrImageSize = 256

type WalletsRepository interface {
	Credit(ctx context.Context, accountID int64, amount decimal.Decimal) error
}

// WalletService manages the DeUna auxiliary balance: recharges funded
// from the main account and the peer payment QR.
type WalletService struct {
	logger *slog.Logger

	accounts     AccountsRepository
	wallets      WalletsRepository
	transactions TransactionsRepository
	transactor   Transactor

	events  TransactionEvents
	baseURL string

	now func() time.Time
}

func NewWalletService(
	logger *slog.Logger,
	accounts AccountsRepository,
	wallets WalletsRepository,
	transactions TransactionsRepository,
	transactor Transactor,
	events TransactionEvents,
	baseURL string,
) *WalletService {
	return &WalletService{
		logger:       logger,
		accounts:     accounts,
		wallets:      wallets,
		transactions: transactions,
		transactor:   transactor,
		events:       events,
		baseURL:      baseURL,
		now:          time.Now,
	}
}

// Recharge debits the main account and credits the DeUna wallet in one
// transaction, creating the wallet on first use. The debit is recorded
// in the ledger so the banca-web history reflects it.
func (s *WalletService) Recharge(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("recharge amount must be positive")
	}

	var record *entities.TransactionRecord

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		balance, found, err := s.accounts.BalanceForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if !found {
			return entities.ErrAccountNotFound
		}
		if balance.LessThan(amount) {
			return entities.ErrInsufficientFunds
		}

		newBalance := balance.Sub(amount)

		if err = s.accounts.SetBalance(ctx, accountID, newBalance); err != nil {
			return err
		}

		if err = s.wallets.Credit(ctx, accountID, amount); err != nil {
			return err
		}

		record = &entities.TransactionRecord{
			Reference:        uuid.New().String(),
			AccountID:        accountID,
			Type:             entities.TransactionDebit,
			Amount:           amount.Neg(),
			Description:      rechargeDescription,
			CreatedAt:        s.now(),
			ResultingBalance: newBalance,
		}

		return s.transactions.Append(ctx, record)
	})
	if err != nil {
		return err
	}

	s.logger.Info("DeUna wallet recharged", "account_id", accountID, "amount", amount.String())

	if s.events != nil {
		s.events.TransactionAppended(record)
	}

	return nil
}

// PaymentQR builds the peer payment link for a customer and renders it
// as a base64 PNG. The demo installation has exactly two customers, so
// each QR points at the other one.
func (s *WalletService) PaymentQR(ctx context.Context, customerID int64) (*entities.PaymentQR, error) {
	summary, err := s.accounts.FindSummaryByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, entities.ErrAccountNotFound
	}

	peer := peerCustomerID(customerID)
	link := fmt.Sprintf("%s/simulacion/escanear-qr/%d/%d", s.baseURL, peer, customerID)

	png, err := qrcode.Encode(link, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment qr: %w", err)
	}

	return &entities.PaymentQR{
		Link:           link,
		PNGBase64:      base64.StdEncoding.EncodeToString(png),
		PeerCustomerID: peer,
	}, nil
}

// ScanPrefill resolves the payer account and the destination account id
// used to prefill the simulated QR-scan payment page.
func (s *WalletService) ScanPrefill(ctx context.Context, payerCustomerID, payeeCustomerID int64) (*entities.ScanPrefill, error) {
	payer, err := s.accounts.FindSummaryByCustomerID(ctx, payerCustomerID)
	if err != nil {
		return nil, err
	}
	if payer == nil {
		return nil, entities.ErrAccountNotFound
	}

	payee, err := s.accounts.FindSummaryByCustomerID(ctx, payeeCustomerID)
	if err != nil {
		return nil, err
	}
	if payee == nil {
		return nil, entities.ErrAccountNotFound
	}

	return &entities.ScanPrefill{
		Payer:                *payer,
		DestinationAccountID: payee.ID,
	}, nil
}

// The demo seeds customers 1 and 2; each one's QR targets the other.
func peerCustomerID(customerID int64) int64 {
	if customerID == 1 {
		return 2
	}

	return 1
}
