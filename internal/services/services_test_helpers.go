package services

import (
	"context"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/Luismi76/fiestapp-sub003/internal/events"
	"github.com/Luismi76/fiestapp-sub003/internal/models"
	"github.com/Luismi76/fiestapp-sub003/internal/payments"
	"github.com/Luismi76/fiestapp-sub003/internal/store"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubWalletStore struct {
	getByUserFn          func(ctx context.Context, userID string) (models.Wallet, error)
	getByIDFn            func(ctx context.Context, walletID string) (models.Wallet, error)
	getForUpdateFn       func(ctx context.Context, tx store.Getter, walletID string) (models.Wallet, error)
	getForUpdateByUserFn func(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error)
	updateBalanceFn      func(ctx context.Context, tx store.Execer, walletID string, balance int64) error
}

func (s stubWalletStore) GetByUser(ctx context.Context, userID string) (models.Wallet, error) {
	if s.getByUserFn == nil {
		return models.Wallet{}, nil
	}
	return s.getByUserFn(ctx, userID)
}

func (s stubWalletStore) GetByID(ctx context.Context, walletID string) (models.Wallet, error) {
	if s.getByIDFn == nil {
		return models.Wallet{}, nil
	}
	return s.getByIDFn(ctx, walletID)
}

func (s stubWalletStore) GetForUpdate(ctx context.Context, tx store.Getter, walletID string) (models.Wallet, error) {
	if s.getForUpdateFn == nil {
		return models.Wallet{}, nil
	}
	return s.getForUpdateFn(ctx, tx, walletID)
}

func (s stubWalletStore) GetForUpdateByUser(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error) {
	if s.getForUpdateByUserFn == nil {
		return models.Wallet{}, nil
	}
	return s.getForUpdateByUserFn(ctx, tx, userID)
}

func (s stubWalletStore) UpdateBalance(ctx context.Context, tx store.Execer, walletID string, balance int64) error {
	if s.updateBalanceFn == nil {
		return nil
	}
	return s.updateBalanceFn(ctx, tx, walletID, balance)
}

type stubTransactionStore struct {
	createFn            func(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	updateStatusFn      func(ctx context.Context, tx store.Execer, transactionID, status string) error
	getCompletedByRefFn func(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error)
	getByRefFn          func(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error)
	listByWalletFn      func(ctx context.Context, walletID string, limit, offset int) ([]models.Transaction, error)
}

func (s stubTransactionStore) Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubTransactionStore) UpdateStatus(ctx context.Context, tx store.Execer, transactionID, status string) error {
	if s.updateStatusFn == nil {
		return nil
	}
	return s.updateStatusFn(ctx, tx, transactionID, status)
}

func (s stubTransactionStore) GetCompletedByRef(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error) {
	if s.getCompletedByRefFn == nil {
		return models.Transaction{}, false, nil
	}
	return s.getCompletedByRefFn(ctx, tx, txType, externalRef)
}

func (s stubTransactionStore) GetByRef(ctx context.Context, tx store.Getter, txType, externalRef string) (models.Transaction, bool, error) {
	if s.getByRefFn == nil {
		return models.Transaction{}, false, nil
	}
	return s.getByRefFn(ctx, tx, txType, externalRef)
}

func (s stubTransactionStore) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]models.Transaction, error) {
	if s.listByWalletFn == nil {
		return nil, nil
	}
	return s.listByWalletFn(ctx, walletID, limit, offset)
}

type stubMatchStore struct {
	createFn                func(ctx context.Context, tx store.Execer, input store.MatchInput) error
	getByIDFn               func(ctx context.Context, matchID string) (models.Match, error)
	getForUpdateFn          func(ctx context.Context, tx store.Getter, matchID string) (models.Match, error)
	updateStatusFn          func(ctx context.Context, tx store.Execer, matchID, status string) error
	setExternalPaymentRefFn func(ctx context.Context, tx store.Execer, matchID, externalRef string) error
}

func (s stubMatchStore) Create(ctx context.Context, tx store.Execer, input store.MatchInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubMatchStore) GetByID(ctx context.Context, matchID string) (models.Match, error) {
	if s.getByIDFn == nil {
		return models.Match{}, nil
	}
	return s.getByIDFn(ctx, matchID)
}

func (s stubMatchStore) GetForUpdate(ctx context.Context, tx store.Getter, matchID string) (models.Match, error) {
	if s.getForUpdateFn == nil {
		return models.Match{}, nil
	}
	return s.getForUpdateFn(ctx, tx, matchID)
}

func (s stubMatchStore) UpdateStatus(ctx context.Context, tx store.Execer, matchID, status string) error {
	if s.updateStatusFn == nil {
		return nil
	}
	return s.updateStatusFn(ctx, tx, matchID, status)
}

func (s stubMatchStore) SetExternalPaymentRef(ctx context.Context, tx store.Execer, matchID, externalRef string) error {
	if s.setExternalPaymentRefFn == nil {
		return nil
	}
	return s.setExternalPaymentRefFn(ctx, tx, matchID, externalRef)
}

type stubDisputeStore struct {
	createFn       func(ctx context.Context, tx store.Execer, input store.DisputeInput) error
	getByIDFn      func(ctx context.Context, disputeID string) (models.Dispute, error)
	getForUpdateFn func(ctx context.Context, tx store.Getter, disputeID string) (models.Dispute, error)
	getByMatchFn   func(ctx context.Context, matchID string) (models.Dispute, bool, error)
	updateStatusFn func(ctx context.Context, tx store.Execer, disputeID, status string) error
	resolveFn      func(ctx context.Context, tx store.Execer, disputeID, status string, refundAmount int64) error
}

func (s stubDisputeStore) Create(ctx context.Context, tx store.Execer, input store.DisputeInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubDisputeStore) GetByID(ctx context.Context, disputeID string) (models.Dispute, error) {
	if s.getByIDFn == nil {
		return models.Dispute{}, nil
	}
	return s.getByIDFn(ctx, disputeID)
}

func (s stubDisputeStore) GetForUpdate(ctx context.Context, tx store.Getter, disputeID string) (models.Dispute, error) {
	if s.getForUpdateFn == nil {
		return models.Dispute{}, nil
	}
	return s.getForUpdateFn(ctx, tx, disputeID)
}

func (s stubDisputeStore) GetByMatch(ctx context.Context, matchID string) (models.Dispute, bool, error) {
	if s.getByMatchFn == nil {
		return models.Dispute{}, false, nil
	}
	return s.getByMatchFn(ctx, matchID)
}

func (s stubDisputeStore) UpdateStatus(ctx context.Context, tx store.Execer, disputeID, status string) error {
	if s.updateStatusFn == nil {
		return nil
	}
	return s.updateStatusFn(ctx, tx, disputeID, status)
}

func (s stubDisputeStore) Resolve(ctx context.Context, tx store.Execer, disputeID, status string, refundAmount int64) error {
	if s.resolveFn == nil {
		return nil
	}
	return s.resolveFn(ctx, tx, disputeID, status, refundAmount)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubGateway struct {
	providerNameFn func() string
	createIntentFn func(ctx context.Context, intentContext string, req payments.CreateRequest) (payments.Intent, error)
	confirmFn      func(ctx context.Context, externalRef string) (payments.Status, error)
	captureFn      func(ctx context.Context, externalRef string) (payments.Status, error)
	refundFn       func(ctx context.Context, externalRef string, amount int64) error
	voidFn         func(ctx context.Context, externalRef string) error
	intentFn       func(ctx context.Context, externalRef string) (models.PaymentIntent, bool, error)
}

func (s stubGateway) ProviderName() string {
	if s.providerNameFn == nil {
		return "stub"
	}
	return s.providerNameFn()
}

func (s stubGateway) CreateIntent(ctx context.Context, intentContext string, req payments.CreateRequest) (payments.Intent, error) {
	if s.createIntentFn == nil {
		return payments.Intent{ExternalRef: "ref_stub", Status: payments.StatusAuthorized}, nil
	}
	return s.createIntentFn(ctx, intentContext, req)
}

func (s stubGateway) Confirm(ctx context.Context, externalRef string) (payments.Status, error) {
	if s.confirmFn == nil {
		return payments.StatusAuthorized, nil
	}
	return s.confirmFn(ctx, externalRef)
}

func (s stubGateway) Capture(ctx context.Context, externalRef string) (payments.Status, error) {
	if s.captureFn == nil {
		return payments.StatusCaptured, nil
	}
	return s.captureFn(ctx, externalRef)
}

func (s stubGateway) Refund(ctx context.Context, externalRef string, amount int64) error {
	if s.refundFn == nil {
		return nil
	}
	return s.refundFn(ctx, externalRef, amount)
}

func (s stubGateway) Void(ctx context.Context, externalRef string) error {
	if s.voidFn == nil {
		return nil
	}
	return s.voidFn(ctx, externalRef)
}

func (s stubGateway) Intent(ctx context.Context, externalRef string) (models.PaymentIntent, bool, error) {
	if s.intentFn == nil {
		return models.PaymentIntent{}, false, nil
	}
	return s.intentFn(ctx, externalRef)
}

type stubPublisher struct {
	publishFn func(userIDs []string, event events.Event)
}

func (s stubPublisher) Publish(userIDs []string, event events.Event) {
	if s.publishFn != nil {
		s.publishFn(userIDs, event)
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
