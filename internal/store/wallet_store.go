package store

import (
	"context"

	"github.com/Luismi76/fiestapp-sub003/internal/models"
)

type WalletStore struct {
	db DB
}

type WalletReconciliation struct {
	WalletID      string `db:"wallet_id"`
	UserID        string `db:"user_id"`
	Currency      string `db:"currency"`
	StoredBalance int64  `db:"stored_balance"`
	LedgerSum     int64  `db:"ledger_sum"`
	Difference    int64  `db:"difference"`
}

func NewWalletStore(db DB) *WalletStore {
	return &WalletStore{db: db}
}

func (s *WalletStore) Create(ctx context.Context, tx Execer, id, userID, currency string) error {
	query := `
		INSERT INTO wallets (id, user_id, balance, currency)
		VALUES ($1, $2, 0, $3)
	`
	_, err := tx.ExecContext(ctx, query, id, userID, currency)
	return err
}

func (s *WalletStore) GetByUser(ctx context.Context, userID string) (models.Wallet, error) {
	var row models.Wallet
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, balance, currency, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`, userID)
	return row, err
}

func (s *WalletStore) GetByID(ctx context.Context, walletID string) (models.Wallet, error) {
	var row models.Wallet
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, balance, currency, created_at, updated_at
		FROM wallets
		WHERE id = $1
	`, walletID)
	return row, err
}

func (s *WalletStore) GetForUpdate(ctx context.Context, tx Getter, walletID string) (models.Wallet, error) {
	var row models.Wallet
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, balance, currency, created_at, updated_at
		FROM wallets
		WHERE id = $1
		FOR UPDATE
	`, walletID)
	return row, err
}

func (s *WalletStore) GetForUpdateByUser(ctx context.Context, tx Getter, userID string) (models.Wallet, error) {
	var row models.Wallet
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, balance, currency, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	return row, err
}

func (s *WalletStore) UpdateBalance(ctx context.Context, tx Execer, walletID string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, walletID)
	return err
}

func (s *WalletStore) ReconcileAll(ctx context.Context) ([]WalletReconciliation, error) {
	var rows []WalletReconciliation
	err := s.db.SelectContext(ctx, &rows, `
		SELECT w.id AS wallet_id,
		       w.user_id,
		       w.currency,
		       w.balance AS stored_balance,
		       COALESCE(SUM(t.amount) FILTER (WHERE t.status = 'completed'), 0) AS ledger_sum,
		       (w.balance - COALESCE(SUM(t.amount) FILTER (WHERE t.status = 'completed'), 0)) AS difference
		FROM wallets w
		LEFT JOIN transactions t ON t.wallet_id = w.id
		GROUP BY w.id, w.user_id, w.currency, w.balance
		ORDER BY w.created_at
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
