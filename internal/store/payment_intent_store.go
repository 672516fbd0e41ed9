package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Luismi76/fiestapp-sub003/internal/models"
)

type PaymentIntentStore struct {
	db DB
}

func NewPaymentIntentStore(db DB) *PaymentIntentStore {
	return &PaymentIntentStore{db: db}
}

func (s *PaymentIntentStore) Create(ctx context.Context, externalRef, intentContext, provider, status string, amount int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_intents (external_ref, context, provider, status, amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_ref) DO NOTHING
	`, externalRef, intentContext, provider, status, amount)
	return err
}

func (s *PaymentIntentStore) Get(ctx context.Context, externalRef string) (models.PaymentIntent, bool, error) {
	var row models.PaymentIntent
	err := s.db.GetContext(ctx, &row, `
		SELECT external_ref, context, provider, status, amount, created_at, updated_at
		FROM payment_intents
		WHERE external_ref = $1
	`, externalRef)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PaymentIntent{}, false, nil
	}
	if err != nil {
		return models.PaymentIntent{}, false, err
	}
	return row, true, nil
}

func (s *PaymentIntentStore) UpdateStatus(ctx context.Context, externalRef, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE payment_intents
		SET status = $1, updated_at = NOW()
		WHERE external_ref = $2
	`, status, externalRef)
	return err
}
