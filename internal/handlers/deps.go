package handlers

import (
	"context"

	"github.com/Luismi76/fiestapp-sub003/internal/models"
	"github.com/Luismi76/fiestapp-sub003/internal/payments"
	"github.com/Luismi76/fiestapp-sub003/internal/services"
	"github.com/Luismi76/fiestapp-sub003/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
	HasAnyAdmin(ctx context.Context) (bool, error)
	Promote(ctx context.Context, tx store.Execer, userID string) error
}

type WalletStore interface {
	Create(ctx context.Context, tx store.Execer, id, userID, currency string) error
	ReconcileAll(ctx context.Context) ([]store.WalletReconciliation, error)
}

type TransactionStore interface {
	ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error)
}

type MatchStore interface {
	ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]models.Match, error)
}

type DisputeStore interface {
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Dispute, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type WalletService interface {
	Balance(ctx context.Context, userID string) (models.Wallet, error)
	CanOperate(ctx context.Context, userID string) (bool, error)
	Transactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
}

type TopUpService interface {
	Create(ctx context.Context, userID string, amount int64) (services.TopUpIntent, error)
	Confirm(ctx context.Context, externalRef string) (models.Transaction, error)
}

type MatchService interface {
	Request(ctx context.Context, req services.MatchRequest) (services.MatchCreated, error)
	Accept(ctx context.Context, matchID, actorID string) (models.Match, error)
	Reject(ctx context.Context, matchID, actorID string) (models.Match, error)
	Cancel(ctx context.Context, matchID, actorID string) (models.Match, error)
	Complete(ctx context.Context, matchID, actorID string) (models.Match, error)
	SettleCapture(ctx context.Context, externalRef string) error
	Get(ctx context.Context, matchID string) (models.Match, error)
}

type DisputeService interface {
	Open(ctx context.Context, matchID, openedBy, reason, description string) (models.Dispute, error)
	Review(ctx context.Context, disputeID, adminID string) (models.Dispute, error)
	Close(ctx context.Context, disputeID, actorID string) (models.Dispute, error)
	Resolve(ctx context.Context, disputeID, adminID, outcome string, refundAmount int64) (models.Dispute, error)
	Get(ctx context.Context, disputeID string) (models.Dispute, error)
}

type PaymentGateway interface {
	Confirm(ctx context.Context, externalRef string) (payments.Status, error)
	Intent(ctx context.Context, externalRef string) (models.PaymentIntent, bool, error)
}
