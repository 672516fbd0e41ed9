package services

import (
	"context"
	"testing"

	"github.com/Luismi76/fiestapp-sub003/internal/models"
	"github.com/Luismi76/fiestapp-sub003/internal/payments"
	"github.com/Luismi76/fiestapp-sub003/internal/store"
)

func TestCreateTopUpRejectsNonPositiveAmount(t *testing.T) {
	svc := NewTopUpService(fakeTxRunner{}, stubWalletStore{}, stubTransactionStore{}, nil, stubGateway{}, "", "", testLogger())
	if _, err := svc.Create(context.Background(), "u1", 0); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreateTopUpRecordsPendingRow(t *testing.T) {
	var recorded store.TransactionInput
	wallets := stubWalletStore{
		getByUserFn: func(ctx context.Context, userID string) (models.Wallet, error) {
			return models.Wallet{ID: "w1", UserID: userID, Currency: "EUR"}, nil
		},
	}
	transactions := stubTransactionStore{
		createFn: func(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
			recorded = input
			return nil
		},
	}
	gateway := stubGateway{
		createIntentFn: func(ctx context.Context, intentContext string, req payments.CreateRequest) (payments.Intent, error) {
			if intentContext != models.IntentContextTopUp {
				t.Fatalf("expected topup context, got %s", intentContext)
			}
			if req.Hold {
				t.Fatal("top-ups must not request a hold")
			}
			return payments.Intent{ExternalRef: "pi_123", ClientSecret: "secret", Status: payments.StatusRequiresAction}, nil
		},
	}
	svc := NewTopUpService(fakeTxRunner{}, wallets, transactions, nil, gateway, "", "", testLogger())

	intent, err := svc.Create(context.Background(), "u1", 2000)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if intent.ExternalRef != "pi_123" {
		t.Fatalf("unexpected external ref %s", intent.ExternalRef)
	}
	if recorded.Status != models.TxStatusPending {
		t.Fatalf("expected pending row, got %s", recorded.Status)
	}
	if recorded.ExternalRef == nil || *recorded.ExternalRef != "pi_123" {
		t.Fatal("expected pending row keyed by provider reference")
	}
}

func TestConfirmTopUpCreditsOnce(t *testing.T) {
	row := models.Transaction{ID: "t1", WalletID: "w1", Type: models.TxTypeTopUp, Status: models.TxStatusPending, Amount: 2000, Currency: "EUR"}
	ref := "pi_123"
	balance := int64(0)
	balanceUpdates := 0

	wallets := stubWalletStore{
		getForUpdateFn: func(ctx context.Context, tx store.Getter, walletID string) (models.Wallet, error) {
			return models.Wallet{ID: walletID, UserID: "u1", Balance: balance, Currency: "EUR"}, nil
		},
		getByIDFn: func(ctx context.Context, walletID string) (models.Wallet, error) {
			return models.Wallet{ID: walletID, UserID: "u1"}, nil
		},
		updateBalanceFn: func(ctx context.Context, tx store.Execer, walletID string, newBalance int64) error {
			balance = newBalance
			balanceUpdates++
			return nil
		},
	}
	transactions := stubTransactionStore{
		getByRefFn: func(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error) {
			return row, true, nil
		},
		getCompletedByRefFn: func(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error) {
			if row.Status == models.TxStatusCompleted {
				return row, true, nil
			}
			return models.Transaction{}, false, nil
		},
		updateStatusFn: func(ctx context.Context, tx store.Execer, transactionID, status string) error {
			row.Status = status
			return nil
		},
		createFn: func(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
			t.Fatal("confirmation must settle the pending row, not append a new one")
			return nil
		},
	}
	gateway := stubGateway{
		confirmFn: func(ctx context.Context, externalRef string) (payments.Status, error) {
			return payments.StatusCaptured, nil
		},
	}
	ledger := NewWalletService(fakeTxRunner{}, wallets, transactions, stubAuditStore{}, stubPublisher{}, 150, testLogger())
	svc := NewTopUpService(fakeTxRunner{}, wallets, transactions, ledger, gateway, "", "", testLogger())

	for i := 0; i < 3; i++ {
		tx, err := svc.Confirm(context.Background(), ref)
		if err != nil {
			t.Fatalf("confirm %d failed: %v", i, err)
		}
		if tx.Status != models.TxStatusCompleted {
			t.Fatalf("confirm %d returned status %s", i, tx.Status)
		}
	}
	if balance != 2000 {
		t.Fatalf("expected final balance 2000, got %d", balance)
	}
	if balanceUpdates != 1 {
		t.Fatalf("expected exactly one balance update, got %d", balanceUpdates)
	}
}

func TestConfirmTopUpFailureMarksPendingRow(t *testing.T) {
	row := models.Transaction{ID: "t1", WalletID: "w1", Type: models.TxTypeTopUp, Status: models.TxStatusPending, Amount: 2000}
	balanceUpdates := 0
	wallets := stubWalletStore{
		updateBalanceFn: func(ctx context.Context, tx store.Execer, walletID string, balance int64) error {
			balanceUpdates++
			return nil
		},
	}
	transactions := stubTransactionStore{
		getByRefFn: func(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error) {
			return row, true, nil
		},
		updateStatusFn: func(ctx context.Context, tx store.Execer, transactionID, status string) error {
			row.Status = status
			return nil
		},
	}
	gateway := stubGateway{
		confirmFn: func(ctx context.Context, externalRef string) (payments.Status, error) {
			return payments.StatusFailed, nil
		},
	}
	ledger := NewWalletService(fakeTxRunner{}, wallets, transactions, stubAuditStore{}, stubPublisher{}, 150, testLogger())
	svc := NewTopUpService(fakeTxRunner{}, wallets, transactions, ledger, gateway, "", "", testLogger())

	got, err := svc.Confirm(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if got.Status != models.TxStatusFailed {
		t.Fatalf("expected failed row, got %s", got.Status)
	}
	if balanceUpdates != 0 {
		t.Fatal("failed confirmation must not move the balance")
	}
}

func TestConfirmTopUpRequiresActionLeavesRowPending(t *testing.T) {
	row := models.Transaction{ID: "t1", WalletID: "w1", Type: models.TxTypeTopUp, Status: models.TxStatusPending, Amount: 2000}
	transactions := stubTransactionStore{
		getByRefFn: func(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error) {
			return row, true, nil
		},
	}
	gateway := stubGateway{
		confirmFn: func(ctx context.Context, externalRef string) (payments.Status, error) {
			return payments.StatusRequiresAction, nil
		},
	}
	svc := NewTopUpService(fakeTxRunner{}, stubWalletStore{}, transactions, nil, gateway, "", "", testLogger())

	got, err := svc.Confirm(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if got.Status != models.TxStatusPending {
		t.Fatalf("expected pending row, got %s", got.Status)
	}
}

func TestConfirmTopUpUnknownReference(t *testing.T) {
	gateway := stubGateway{
		confirmFn: func(ctx context.Context, externalRef string) (payments.Status, error) {
			return payments.StatusCaptured, nil
		},
	}
	ledger := NewWalletService(fakeTxRunner{}, stubWalletStore{}, stubTransactionStore{}, stubAuditStore{}, stubPublisher{}, 150, testLogger())
	svc := NewTopUpService(fakeTxRunner{}, stubWalletStore{}, stubTransactionStore{}, ledger, gateway, "", "", testLogger())

	if _, err := svc.Confirm(context.Background(), "pi_unknown"); err != ErrTopUpNotFound {
		t.Fatalf("expected ErrTopUpNotFound, got %v", err)
	}
}
