package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Luismi76/fiestapp-sub003/internal/models"
)

type TransactionStore struct {
	db DB
}

type TransactionInput struct {
	ID             string
	WalletID       string
	Type           string
	Status         string
	Amount         int64
	Currency       string
	ExternalRef    *string
	RelatedMatchID *string
	Description    string
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, wallet_id, type, status, amount, currency, external_ref, related_match_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.WalletID, input.Type, input.Status, input.Amount, input.Currency,
		input.ExternalRef, input.RelatedMatchID, input.Description,
	)
	return err
}

func (s *TransactionStore) UpdateStatus(ctx context.Context, tx Execer, transactionID, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE transactions SET status = $1 WHERE id = $2`, status, transactionID)
	return err
}

func (s *TransactionStore) GetCompletedByRef(ctx context.Context, tx Getter, txType, externalRef string) (models.Transaction, bool, error) {
	var row models.Transaction
	err := tx.GetContext(ctx, &row, `
		SELECT id, wallet_id, type, status, amount, currency, external_ref, related_match_id, description, created_at
		FROM transactions
		WHERE type = $1 AND external_ref = $2 AND status = 'completed'
	`, txType, externalRef)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, err
	}
	return row, true, nil
}

func (s *TransactionStore) GetByRef(ctx context.Context, tx Getter, txType, externalRef string) (models.Transaction, bool, error) {
	var row models.Transaction
	err := tx.GetContext(ctx, &row, `
		SELECT id, wallet_id, type, status, amount, currency, external_ref, related_match_id, description, created_at
		FROM transactions
		WHERE type = $1 AND external_ref = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, txType, externalRef)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, err
	}
	return row, true, nil
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, wallet_id, type, status, amount, currency, external_ref, related_match_id, description, created_at
		FROM transactions
		WHERE id = $1
	`, transactionID)
	return row, err
}

func (s *TransactionStore) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, wallet_id, type, status, amount, currency, external_ref, related_match_id, description, created_at
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, wallet_id, type, status, amount, currency, external_ref, related_match_id, description, created_at
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) SumCompletedByWallet(ctx context.Context, walletID string) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE wallet_id = $1 AND status = 'completed'
	`, walletID)
	return sum, err
}
