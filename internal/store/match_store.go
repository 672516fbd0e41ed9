package store

import (
	"context"

	"github.com/Luismi76/fiestapp-sub003/internal/models"
)

type MatchStore struct {
	db DB
}

type MatchInput struct {
	ID           string
	ExperienceID string
	RequesterID  string
	HostID       string
	Status       string
	Participants int
	TotalPrice   int64
}

func NewMatchStore(db DB) *MatchStore {
	return &MatchStore{db: db}
}

func (s *MatchStore) Create(ctx context.Context, tx Execer, input MatchInput) error {
	query := `
		INSERT INTO matches (id, experience_id, requester_id, host_id, status, participants, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.ExperienceID, input.RequesterID, input.HostID,
		input.Status, input.Participants, input.TotalPrice,
	)
	return err
}

func (s *MatchStore) GetByID(ctx context.Context, matchID string) (models.Match, error) {
	var row models.Match
	err := s.db.GetContext(ctx, &row, `
		SELECT id, experience_id, requester_id, host_id, status, participants, total_price, external_payment_ref, created_at, updated_at
		FROM matches
		WHERE id = $1
	`, matchID)
	return row, err
}

func (s *MatchStore) GetForUpdate(ctx context.Context, tx Getter, matchID string) (models.Match, error) {
	var row models.Match
	err := tx.GetContext(ctx, &row, `
		SELECT id, experience_id, requester_id, host_id, status, participants, total_price, external_payment_ref, created_at, updated_at
		FROM matches
		WHERE id = $1
		FOR UPDATE
	`, matchID)
	return row, err
}

func (s *MatchStore) UpdateStatus(ctx context.Context, tx Execer, matchID, status string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE matches
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, matchID)
	return err
}

func (s *MatchStore) SetExternalPaymentRef(ctx context.Context, tx Execer, matchID, externalRef string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE matches
		SET external_payment_ref = $1, updated_at = NOW()
		WHERE id = $2
	`, externalRef, matchID)
	return err
}

func (s *MatchStore) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]models.Match, error) {
	var rows []models.Match
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, experience_id, requester_id, host_id, status, participants, total_price, external_payment_ref, created_at, updated_at
		FROM matches
		WHERE requester_id = $1 OR host_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
