package services

import (
	"context"
	"testing"

	"github.com/Luismi76/fiestapp-sub003/internal/models"
	"github.com/Luismi76/fiestapp-sub003/internal/store"
)

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	svc := NewWalletService(fakeTxRunner{}, stubWalletStore{}, stubTransactionStore{}, stubAuditStore{}, stubPublisher{}, 150, testLogger())
	if _, err := svc.Credit(context.Background(), "w1", 0, models.TxTypeTopUp, nil, nil, ""); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Credit(context.Background(), "w1", -500, models.TxTypeTopUp, nil, nil, ""); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreditIdempotentOnExternalRef(t *testing.T) {
	ref := "pi_123"
	existing := models.Transaction{ID: "t1", WalletID: "w1", Type: models.TxTypeTopUp, Status: models.TxStatusCompleted, Amount: 2000}
	balanceUpdates := 0
	wallets := stubWalletStore{
		getByIDFn: func(ctx context.Context, walletID string) (models.Wallet, error) {
			return models.Wallet{ID: walletID, UserID: "u1"}, nil
		},
		updateBalanceFn: func(ctx context.Context, tx store.Execer, walletID string, balance int64) error {
			balanceUpdates++
			return nil
		},
	}
	transactions := stubTransactionStore{
		getCompletedByRefFn: func(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error) {
			return existing, true, nil
		},
	}
	svc := NewWalletService(fakeTxRunner{}, wallets, transactions, stubAuditStore{}, stubPublisher{}, 150, testLogger())

	got, err := svc.Credit(context.Background(), "w1", 2000, models.TxTypeTopUp, &ref, nil, "top-up")
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if got.ID != existing.ID {
		t.Fatalf("expected existing transaction %s, got %s", existing.ID, got.ID)
	}
	if balanceUpdates != 0 {
		t.Fatalf("duplicate credit moved the balance %d times", balanceUpdates)
	}
}

func TestCreditSettlesPendingRowInPlace(t *testing.T) {
	ref := "pi_456"
	pending := models.Transaction{ID: "t9", WalletID: "w1", Type: models.TxTypeTopUp, Status: models.TxStatusPending, Amount: 2000, Currency: "EUR"}
	created := 0
	settledID := ""
	var newBalance int64
	wallets := stubWalletStore{
		getForUpdateFn: func(ctx context.Context, tx store.Getter, walletID string) (models.Wallet, error) {
			return models.Wallet{ID: walletID, UserID: "u1", Balance: 500, Currency: "EUR"}, nil
		},
		getByIDFn: func(ctx context.Context, walletID string) (models.Wallet, error) {
			return models.Wallet{ID: walletID, UserID: "u1"}, nil
		},
		updateBalanceFn: func(ctx context.Context, tx store.Execer, walletID string, balance int64) error {
			newBalance = balance
			return nil
		},
	}
	transactions := stubTransactionStore{
		createFn: func(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
			created++
			return nil
		},
		getByRefFn: func(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error) {
			return pending, true, nil
		},
		updateStatusFn: func(ctx context.Context, tx store.Execer, transactionID, status string) error {
			settledID = transactionID
			if status != models.TxStatusCompleted {
				t.Fatalf("expected completed status, got %s", status)
			}
			return nil
		},
	}
	svc := NewWalletService(fakeTxRunner{}, wallets, transactions, stubAuditStore{}, stubPublisher{}, 150, testLogger())

	got, err := svc.Credit(context.Background(), "w1", 2000, models.TxTypeTopUp, &ref, nil, "top-up")
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected pending row reuse, got %d new rows", created)
	}
	if settledID != pending.ID {
		t.Fatalf("expected pending row %s settled, got %s", pending.ID, settledID)
	}
	if got.Status != models.TxStatusCompleted {
		t.Fatalf("expected completed transaction, got %s", got.Status)
	}
	if newBalance != 2500 {
		t.Fatalf("expected balance 2500, got %d", newBalance)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	created := 0
	wallets := stubWalletStore{
		getForUpdateFn: func(ctx context.Context, tx store.Getter, walletID string) (models.Wallet, error) {
			return models.Wallet{ID: walletID, UserID: "u1", Balance: 100}, nil
		},
	}
	transactions := stubTransactionStore{
		createFn: func(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
			created++
			return nil
		},
	}
	svc := NewWalletService(fakeTxRunner{}, wallets, transactions, stubAuditStore{}, stubPublisher{}, 150, testLogger())

	if _, err := svc.Debit(context.Background(), "w1", 200, models.TxTypeCommission, nil, ""); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if created != 0 {
		t.Fatalf("failed debit wrote %d transactions", created)
	}
}

func TestDebitRecordsNegativeAmount(t *testing.T) {
	var recorded store.TransactionInput
	var newBalance int64
	wallets := stubWalletStore{
		getForUpdateFn: func(ctx context.Context, tx store.Getter, walletID string) (models.Wallet, error) {
			return models.Wallet{ID: walletID, UserID: "u1", Balance: 500, Currency: "EUR"}, nil
		},
		getByIDFn: func(ctx context.Context, walletID string) (models.Wallet, error) {
			return models.Wallet{ID: walletID, UserID: "u1"}, nil
		},
		updateBalanceFn: func(ctx context.Context, tx store.Execer, walletID string, balance int64) error {
			newBalance = balance
			return nil
		},
	}
	transactions := stubTransactionStore{
		createFn: func(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
			recorded = input
			return nil
		},
	}
	svc := NewWalletService(fakeTxRunner{}, wallets, transactions, stubAuditStore{}, stubPublisher{}, 150, testLogger())

	if _, err := svc.Debit(context.Background(), "w1", 400, models.TxTypeCommission, nil, "commission"); err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if recorded.Amount != -400 {
		t.Fatalf("expected ledger amount -400, got %d", recorded.Amount)
	}
	if recorded.Status != models.TxStatusCompleted {
		t.Fatalf("expected completed status, got %s", recorded.Status)
	}
	if newBalance != 100 {
		t.Fatalf("expected balance 100, got %d", newBalance)
	}
}

func TestCanOperateReflectsLiveBalance(t *testing.T) {
	balance := int64(500)
	wallets := stubWalletStore{
		getByUserFn: func(ctx context.Context, userID string) (models.Wallet, error) {
			return models.Wallet{ID: "w1", UserID: userID, Balance: balance}, nil
		},
	}
	svc := NewWalletService(fakeTxRunner{}, wallets, stubTransactionStore{}, stubAuditStore{}, stubPublisher{}, 150, testLogger())

	allowed, err := svc.CanOperate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("can-operate failed: %v", err)
	}
	if !allowed {
		t.Fatal("expected 5.00 balance to cover a 1.50 fee")
	}

	balance = 100
	allowed, err = svc.CanOperate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("can-operate failed: %v", err)
	}
	if allowed {
		t.Fatal("expected 1.00 balance to fail a 1.50 fee gate")
	}
}
