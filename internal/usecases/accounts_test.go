package usecases

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"

	"github.com/vertice/banking-demo/backend/internal/entities"
)

func newAccountService(store *fakeStore) *AccountService {
	return NewAccountService(fakeAccounts{store}, fakeTransactions{store})
}

func TestGetSummary(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, 1, "Maria Paz", "100.00")

	svc := newAccountService(store)

	summary, err := svc.GetSummary(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Maria Paz", summary.HolderName)
	require.True(t, summary.DeunaBalance.IsZero())

	_, err = svc.GetSummary(context.Background(), 9)
	require.ErrorIs(t, err, entities.ErrAccountNotFound)
}

func TestGetHistory(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, 1, "Maria Paz", "100.00")

	transactions := fakeTransactions{store}
	for range 25 {
		require.NoError(t, transactions.Append(context.Background(), &entities.TransactionRecord{
			AccountID:        1,
			Type:             entities.TransactionDebit,
			Amount:           decimal.RequireFromString("-1.00"),
			Description:      "CASH WITHDRAWAL - NO CARD",
			ResultingBalance: decimal.RequireFromString("99.00"),
		}))
	}

	svc := newAccountService(store)

	// The default and anything above the page size clamp to 20.
	records, err := svc.GetHistory(context.Background(), 1, 0, nil)
	require.NoError(t, err)
	require.Len(t, records, 20)

	records, err = svc.GetHistory(context.Background(), 1, 100, nil)
	require.NoError(t, err)
	require.Len(t, records, 20)

	records, err = svc.GetHistory(context.Background(), 1, 5, nil)
	require.NoError(t, err)
	require.Len(t, records, 5)

	// The type filter reaches the repository untouched.
	_, err = svc.GetHistory(context.Background(), 1, 5, pointy.String(entities.TransactionCredit))
	require.NoError(t, err)
	require.Equal(t, entities.TransactionCredit, *store.lastFilter.Type)
}

func TestGetHistoryUnknownCustomer(t *testing.T) {
	store := newFakeStore()

	svc := newAccountService(store)

	_, err := svc.GetHistory(context.Background(), 9, 0, nil)
	require.ErrorIs(t, err, entities.ErrAccountNotFound)
}
