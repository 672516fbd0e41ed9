package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestWalletGetForUpdateLocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewWalletStore(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "balance", "currency"}).
		AddRow("w1", "u1", int64(500), "EUR")
	mock.ExpectQuery(`FROM wallets\s+WHERE id = \$1\s+FOR UPDATE`).
		WithArgs("w1").
		WillReturnRows(rows)

	wallet, err := store.GetForUpdate(context.Background(), db, "w1")
	if err != nil {
		t.Fatalf("get for update failed: %v", err)
	}
	if wallet.Balance != 500 {
		t.Fatalf("expected balance 500, got %d", wallet.Balance)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWalletUpdateBalance(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewWalletStore(db)

	mock.ExpectExec(`UPDATE wallets\s+SET balance = \$1`).
		WithArgs(int64(2500), "w1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.UpdateBalance(context.Background(), db, "w1", 2500); err != nil {
		t.Fatalf("update balance failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWalletReconcileAll(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewWalletStore(db)

	rows := sqlmock.NewRows([]string{"wallet_id", "user_id", "currency", "stored_balance", "ledger_sum", "difference"}).
		AddRow("w1", "u1", "EUR", int64(2500), int64(2500), int64(0)).
		AddRow("w2", "u2", "EUR", int64(900), int64(800), int64(100))
	mock.ExpectQuery(`SELECT w\.id AS wallet_id`).WillReturnRows(rows)

	report, err := store.ReconcileAll(context.Background())
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report))
	}
	if report[0].Difference != 0 {
		t.Fatalf("expected balanced wallet, got difference %d", report[0].Difference)
	}
	if report[1].Difference != 100 {
		t.Fatalf("expected drift 100, got %d", report[1].Difference)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
