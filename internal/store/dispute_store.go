package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Luismi76/fiestapp-sub003/internal/models"
)

type DisputeStore struct {
	db DB
}

type DisputeInput struct {
	ID          string
	MatchID     string
	OpenedBy    string
	Respondent  string
	Reason      string
	Description string
	Status      string
}

func NewDisputeStore(db DB) *DisputeStore {
	return &DisputeStore{db: db}
}

func (s *DisputeStore) Create(ctx context.Context, tx Execer, input DisputeInput) error {
	query := `
		INSERT INTO disputes (id, match_id, opened_by, respondent, reason, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.MatchID, input.OpenedBy, input.Respondent,
		input.Reason, input.Description, input.Status,
	)
	return err
}

func (s *DisputeStore) GetByID(ctx context.Context, disputeID string) (models.Dispute, error) {
	var row models.Dispute
	err := s.db.GetContext(ctx, &row, `
		SELECT id, match_id, opened_by, respondent, reason, description, status, refund_amount, created_at, resolved_at
		FROM disputes
		WHERE id = $1
	`, disputeID)
	return row, err
}

func (s *DisputeStore) GetForUpdate(ctx context.Context, tx Getter, disputeID string) (models.Dispute, error) {
	var row models.Dispute
	err := tx.GetContext(ctx, &row, `
		SELECT id, match_id, opened_by, respondent, reason, description, status, refund_amount, created_at, resolved_at
		FROM disputes
		WHERE id = $1
		FOR UPDATE
	`, disputeID)
	return row, err
}

func (s *DisputeStore) GetByMatch(ctx context.Context, matchID string) (models.Dispute, bool, error) {
	var row models.Dispute
	err := s.db.GetContext(ctx, &row, `
		SELECT id, match_id, opened_by, respondent, reason, description, status, refund_amount, created_at, resolved_at
		FROM disputes
		WHERE match_id = $1
	`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Dispute{}, false, nil
	}
	if err != nil {
		return models.Dispute{}, false, err
	}
	return row, true, nil
}

func (s *DisputeStore) UpdateStatus(ctx context.Context, tx Execer, disputeID, status string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE disputes
		SET status = $1
		WHERE id = $2
	`, status, disputeID)
	return err
}

func (s *DisputeStore) Resolve(ctx context.Context, tx Execer, disputeID, status string, refundAmount int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE disputes
		SET status = $1, refund_amount = $2, resolved_at = NOW()
		WHERE id = $3
	`, status, refundAmount, disputeID)
	return err
}

func (s *DisputeStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Dispute, error) {
	var rows []models.Dispute
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, match_id, opened_by, respondent, reason, description, status, refund_amount, created_at, resolved_at
		FROM disputes
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
