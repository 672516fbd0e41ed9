package services

import (
	"context"

	"github.com/Luismi76/fiestapp-sub003/internal/models"
	"github.com/Luismi76/fiestapp-sub003/internal/payments"
	"github.com/Luismi76/fiestapp-sub003/internal/store"
)

type WalletStore interface {
	GetByUser(ctx context.Context, userID string) (models.Wallet, error)
	GetByID(ctx context.Context, walletID string) (models.Wallet, error)
	GetForUpdate(ctx context.Context, tx store.Getter, walletID string) (models.Wallet, error)
	GetForUpdateByUser(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error)
	UpdateBalance(ctx context.Context, tx store.Execer, walletID string, balance int64) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	UpdateStatus(ctx context.Context, tx store.Execer, transactionID, status string) error
	GetCompletedByRef(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error)
	GetByRef(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error)
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]models.Transaction, error)
}

type MatchStore interface {
	Create(ctx context.Context, tx store.Execer, input store.MatchInput) error
	GetByID(ctx context.Context, matchID string) (models.Match, error)
	GetForUpdate(ctx context.Context, tx store.Getter, matchID string) (models.Match, error)
	UpdateStatus(ctx context.Context, tx store.Execer, matchID, status string) error
	SetExternalPaymentRef(ctx context.Context, tx store.Execer, matchID, externalRef string) error
}

type DisputeStore interface {
	Create(ctx context.Context, tx store.Execer, input store.DisputeInput) error
	GetByID(ctx context.Context, disputeID string) (models.Dispute, error)
	GetForUpdate(ctx context.Context, tx store.Getter, disputeID string) (models.Dispute, error)
	GetByMatch(ctx context.Context, matchID string) (models.Dispute, bool, error)
	UpdateStatus(ctx context.Context, tx store.Execer, disputeID, status string) error
	Resolve(ctx context.Context, tx store.Execer, disputeID, status string, refundAmount int64) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type Gateway interface {
	ProviderName() string
	CreateIntent(ctx context.Context, intentContext string, req payments.CreateRequest) (payments.Intent, error)
	Confirm(ctx context.Context, externalRef string) (payments.Status, error)
	Capture(ctx context.Context, externalRef string) (payments.Status, error)
	Refund(ctx context.Context, externalRef string, amount int64) error
	Void(ctx context.Context, externalRef string) error
	Intent(ctx context.Context, externalRef string) (models.PaymentIntent, bool, error)
}
