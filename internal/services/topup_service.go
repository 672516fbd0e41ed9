package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/Luismi76/fiestapp-sub003/internal/db"
	"github.com/Luismi76/fiestapp-sub003/internal/events"
	"github.com/Luismi76/fiestapp-sub003/internal/metrics"
	"github.com/Luismi76/fiestapp-sub003/internal/models"
	"github.com/Luismi76/fiestapp-sub003/internal/payments"
	"github.com/Luismi76/fiestapp-sub003/internal/store"
)

type TopUpService struct {
	txRunner     db.TxRunner
	wallets      WalletStore
	transactions TransactionStore
	ledger       *WalletService
	gateway      Gateway
	returnURL    string
	cancelURL    string
	log          *logrus.Logger
}

type TopUpIntent struct {
	ExternalRef  string `json:"external_ref"`
	ClientSecret string `json:"client_secret,omitempty"`
	ApprovalURL  string `json:"approval_url,omitempty"`
	Status       string `json:"status"`
}

func NewTopUpService(txRunner db.TxRunner, wallets WalletStore, transactions TransactionStore, ledger *WalletService, gateway Gateway, returnURL, cancelURL string, log *logrus.Logger) *TopUpService {
	return &TopUpService{
		txRunner:     txRunner,
		wallets:      wallets,
		transactions: transactions,
		ledger:       ledger,
		gateway:      gateway,
		returnURL:    returnURL,
		cancelURL:    cancelURL,
		log:          log,
	}
}

func (s *TopUpService) Create(ctx context.Context, userID string, amount int64) (TopUpIntent, error) {
	if amount <= 0 {
		return TopUpIntent{}, ErrInvalidAmount
	}
	wallet, err := s.wallets.GetByUser(ctx, userID)
	if err != nil {
		return TopUpIntent{}, err
	}
	intent, err := s.gateway.CreateIntent(ctx, models.IntentContextTopUp, payments.CreateRequest{
		ReferenceID: wallet.ID,
		Amount:      amount,
		Currency:    wallet.Currency,
		ReturnURL:   s.returnURL,
		CancelURL:   s.cancelURL,
	})
	if err != nil {
		return TopUpIntent{}, err
	}
	externalRef := intent.ExternalRef
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:          uuid.NewString(),
			WalletID:    wallet.ID,
			Type:        models.TxTypeTopUp,
			Status:      models.TxStatusPending,
			Amount:      amount,
			Currency:    wallet.Currency,
			ExternalRef: &externalRef,
			Description: "Wallet top-up",
		})
	})
	if err != nil {
		return TopUpIntent{}, err
	}
	return TopUpIntent{
		ExternalRef:  intent.ExternalRef,
		ClientSecret: intent.ClientSecret,
		ApprovalURL:  intent.ApprovalURL,
		Status:       string(intent.Status),
	}, nil
}

func (s *TopUpService) Confirm(ctx context.Context, externalRef string) (models.Transaction, error) {
	status, err := s.gateway.Confirm(ctx, externalRef)
	if err != nil {
		return models.Transaction{}, err
	}
	switch status {
	case payments.StatusCaptured, payments.StatusProcessing:
		return s.settle(ctx, externalRef)
	case payments.StatusRequiresAction:
		return s.pendingRow(ctx, externalRef)
	default:
		return s.fail(ctx, externalRef, status)
	}
}

func (s *TopUpService) settle(ctx context.Context, externalRef string) (models.Transaction, error) {
	var result models.Transaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		pending, found, err := s.transactions.GetByRef(ctx, tx, models.TxTypeTopUp, externalRef)
		if err != nil {
			return err
		}
		if !found {
			return ErrTopUpNotFound
		}
		result, err = s.ledger.CreditInTx(ctx, tx, pending.WalletID, pending.Amount, models.TxTypeTopUp, &externalRef, nil, "Wallet top-up")
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	metrics.RecordTopUp()
	s.ledger.publishForWallet(ctx, result.WalletID, topUpEvent(result))
	return result, nil
}

func (s *TopUpService) pendingRow(ctx context.Context, externalRef string) (models.Transaction, error) {
	var row models.Transaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		pending, found, err := s.transactions.GetByRef(ctx, tx, models.TxTypeTopUp, externalRef)
		if err != nil {
			return err
		}
		if !found {
			return ErrTopUpNotFound
		}
		row = pending
		return nil
	})
	return row, err
}

func (s *TopUpService) fail(ctx context.Context, externalRef string, status payments.Status) (models.Transaction, error) {
	var row models.Transaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		pending, found, err := s.transactions.GetByRef(ctx, tx, models.TxTypeTopUp, externalRef)
		if err != nil {
			return err
		}
		if !found {
			return ErrTopUpNotFound
		}
		if pending.Status == models.TxStatusCompleted {
			row = pending
			return nil
		}
		if pending.Status != models.TxStatusFailed {
			if err := s.transactions.UpdateStatus(ctx, tx, pending.ID, models.TxStatusFailed); err != nil {
				return err
			}
		}
		pending.Status = models.TxStatusFailed
		row = pending
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.log.WithFields(logrus.Fields{
		"external_ref": externalRef,
		"status":       status,
	}).Warn("top-up confirmation failed at provider")
	return row, nil
}

func topUpEvent(tx models.Transaction) events.Event {
	return events.Event{
		Type:     events.WalletToppedUp,
		WalletID: tx.WalletID,
		Amount:   tx.Amount,
		Currency: tx.Currency,
	}
}
