package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/Luismi76/fiestapp-sub003/internal/db"
	"github.com/Luismi76/fiestapp-sub003/internal/events"
	"github.com/Luismi76/fiestapp-sub003/internal/metrics"
	"github.com/Luismi76/fiestapp-sub003/internal/models"
	"github.com/Luismi76/fiestapp-sub003/internal/store"
)

type WalletService struct {
	txRunner     db.TxRunner
	wallets      WalletStore
	transactions TransactionStore
	audit        AuditStore
	publisher    events.Publisher
	platformFee  int64
	log          *logrus.Logger
}

func NewWalletService(txRunner db.TxRunner, wallets WalletStore, transactions TransactionStore, audit AuditStore, publisher events.Publisher, platformFee int64, log *logrus.Logger) *WalletService {
	return &WalletService{
		txRunner:     txRunner,
		wallets:      wallets,
		transactions: transactions,
		audit:        audit,
		publisher:    publisher,
		platformFee:  platformFee,
		log:          log,
	}
}

func (s *WalletService) Credit(ctx context.Context, walletID string, amount int64, txType string, externalRef *string, relatedMatchID *string, description string) (models.Transaction, error) {
	var result models.Transaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		result, err = s.CreditInTx(ctx, tx, walletID, amount, txType, externalRef, relatedMatchID, description)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.publishForWallet(ctx, walletID, events.Event{
		Type:     events.WalletToppedUp,
		WalletID: walletID,
		Amount:   result.Amount,
		Currency: result.Currency,
	})
	return result, nil
}

func (s *WalletService) CreditInTx(ctx context.Context, tx store.Tx, walletID string, amount int64, txType string, externalRef *string, relatedMatchID *string, description string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	if externalRef != nil {
		existing, found, err := s.transactions.GetCompletedByRef(ctx, tx, txType, *externalRef)
		if err != nil {
			return models.Transaction{}, err
		}
		if found {
			s.log.WithFields(logrus.Fields{
				"wallet_id":    walletID,
				"external_ref": *externalRef,
				"type":         txType,
			}).Info("duplicate credit confirmation, returning existing transaction")
			return existing, nil
		}
	}
	wallet, err := s.wallets.GetForUpdate(ctx, tx, walletID)
	if err != nil {
		return models.Transaction{}, err
	}

	var record models.Transaction
	if externalRef != nil {
		pending, found, err := s.transactions.GetByRef(ctx, tx, txType, *externalRef)
		if err != nil {
			return models.Transaction{}, err
		}
		if found && pending.Status == models.TxStatusPending {
			if err := s.transactions.UpdateStatus(ctx, tx, pending.ID, models.TxStatusCompleted); err != nil {
				return models.Transaction{}, err
			}
			pending.Status = models.TxStatusCompleted
			record = pending
		}
	}
	if record.ID == "" {
		record = models.Transaction{
			ID:             uuid.NewString(),
			WalletID:       wallet.ID,
			Type:           txType,
			Status:         models.TxStatusCompleted,
			Amount:         amount,
			Currency:       wallet.Currency,
			ExternalRef:    externalRef,
			RelatedMatchID: relatedMatchID,
			Description:    description,
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:             record.ID,
			WalletID:       record.WalletID,
			Type:           record.Type,
			Status:         record.Status,
			Amount:         record.Amount,
			Currency:       record.Currency,
			ExternalRef:    record.ExternalRef,
			RelatedMatchID: record.RelatedMatchID,
			Description:    record.Description,
		}); err != nil {
			return models.Transaction{}, err
		}
	}
	if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, wallet.Balance+record.Amount); err != nil {
		return models.Transaction{}, err
	}
	data, _ := json.Marshal(map[string]any{"transaction_id": record.ID, "amount": record.Amount})
	if err := s.audit.Log(ctx, tx, wallet.UserID, "wallet_credit", "transaction", record.ID, string(data)); err != nil {
		return models.Transaction{}, err
	}
	return record, nil
}

func (s *WalletService) Debit(ctx context.Context, walletID string, amount int64, txType string, relatedMatchID *string, description string) (models.Transaction, error) {
	var result models.Transaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		result, err = s.DebitInTx(ctx, tx, walletID, amount, txType, relatedMatchID, description)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.publishForWallet(ctx, walletID, events.Event{
		Type:     events.WalletCharged,
		WalletID: walletID,
		Amount:   result.Amount,
		Currency: result.Currency,
	})
	return result, nil
}

func (s *WalletService) DebitInTx(ctx context.Context, tx store.Tx, walletID string, amount int64, txType string, relatedMatchID *string, description string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	wallet, err := s.wallets.GetForUpdate(ctx, tx, walletID)
	if err != nil {
		return models.Transaction{}, err
	}
	if wallet.Balance < amount {
		return models.Transaction{}, ErrInsufficientBalance
	}
	record := models.Transaction{
		ID:             uuid.NewString(),
		WalletID:       wallet.ID,
		Type:           txType,
		Status:         models.TxStatusCompleted,
		Amount:         -amount,
		Currency:       wallet.Currency,
		RelatedMatchID: relatedMatchID,
		Description:    description,
	}
	if err := s.transactions.Create(ctx, tx, store.TransactionInput{
		ID:             record.ID,
		WalletID:       record.WalletID,
		Type:           record.Type,
		Status:         record.Status,
		Amount:         record.Amount,
		Currency:       record.Currency,
		RelatedMatchID: record.RelatedMatchID,
		Description:    record.Description,
	}); err != nil {
		return models.Transaction{}, err
	}
	if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, wallet.Balance-amount); err != nil {
		return models.Transaction{}, err
	}
	metrics.RecordDebit(txType)
	data, _ := json.Marshal(map[string]any{"transaction_id": record.ID, "amount": record.Amount})
	if err := s.audit.Log(ctx, tx, wallet.UserID, "wallet_debit", "transaction", record.ID, string(data)); err != nil {
		return models.Transaction{}, err
	}
	return record, nil
}

func (s *WalletService) RecordPendingInTx(ctx context.Context, tx store.Tx, walletID string, amount int64, txType string, externalRef *string, relatedMatchID *string, description string) (models.Transaction, error) {
	if amount == 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return models.Transaction{}, err
	}
	record := models.Transaction{
		ID:             uuid.NewString(),
		WalletID:       wallet.ID,
		Type:           txType,
		Status:         models.TxStatusPending,
		Amount:         amount,
		Currency:       wallet.Currency,
		ExternalRef:    externalRef,
		RelatedMatchID: relatedMatchID,
		Description:    description,
	}
	if err := s.transactions.Create(ctx, tx, store.TransactionInput{
		ID:             record.ID,
		WalletID:       record.WalletID,
		Type:           record.Type,
		Status:         record.Status,
		Amount:         record.Amount,
		Currency:       record.Currency,
		ExternalRef:    record.ExternalRef,
		RelatedMatchID: record.RelatedMatchID,
		Description:    record.Description,
	}); err != nil {
		return models.Transaction{}, err
	}
	return record, nil
}

func (s *WalletService) SettleByRefInTx(ctx context.Context, tx store.Tx, txType, externalRef string) (models.Transaction, bool, error) {
	row, found, err := s.transactions.GetByRef(ctx, tx, txType, externalRef)
	if err != nil || !found {
		return models.Transaction{}, false, err
	}
	if row.Status == models.TxStatusCompleted {
		return row, true, nil
	}
	if row.Status != models.TxStatusPending {
		return row, false, nil
	}
	wallet, err := s.wallets.GetForUpdate(ctx, tx, row.WalletID)
	if err != nil {
		return models.Transaction{}, false, err
	}
	if row.Amount < 0 && wallet.Balance+row.Amount < 0 {
		return models.Transaction{}, false, ErrInsufficientBalance
	}
	if err := s.transactions.UpdateStatus(ctx, tx, row.ID, models.TxStatusCompleted); err != nil {
		return models.Transaction{}, false, err
	}
	if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, wallet.Balance+row.Amount); err != nil {
		return models.Transaction{}, false, err
	}
	row.Status = models.TxStatusCompleted
	data, _ := json.Marshal(map[string]any{"transaction_id": row.ID, "amount": row.Amount})
	if err := s.audit.Log(ctx, tx, wallet.UserID, "wallet_settle", "transaction", row.ID, string(data)); err != nil {
		return models.Transaction{}, false, err
	}
	return row, true, nil
}

func (s *WalletService) FailByRefInTx(ctx context.Context, tx store.Tx, txType, externalRef string) error {
	row, found, err := s.transactions.GetByRef(ctx, tx, txType, externalRef)
	if err != nil || !found {
		return err
	}
	if row.Status != models.TxStatusPending {
		return nil
	}
	return s.transactions.UpdateStatus(ctx, tx, row.ID, models.TxStatusFailed)
}

func (s *WalletService) RecordRefundInTx(ctx context.Context, tx store.Tx, walletID string, amount int64, externalRef *string, relatedMatchID *string, description string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return models.Transaction{}, err
	}
	record := models.Transaction{
		ID:             uuid.NewString(),
		WalletID:       wallet.ID,
		Type:           models.TxTypeRefund,
		Status:         models.TxStatusRefunded,
		Amount:         amount,
		Currency:       wallet.Currency,
		ExternalRef:    externalRef,
		RelatedMatchID: relatedMatchID,
		Description:    description,
	}
	if err := s.transactions.Create(ctx, tx, store.TransactionInput{
		ID:             record.ID,
		WalletID:       record.WalletID,
		Type:           record.Type,
		Status:         record.Status,
		Amount:         record.Amount,
		Currency:       record.Currency,
		ExternalRef:    record.ExternalRef,
		RelatedMatchID: record.RelatedMatchID,
		Description:    record.Description,
	}); err != nil {
		return models.Transaction{}, err
	}
	data, _ := json.Marshal(map[string]any{"transaction_id": record.ID, "amount": record.Amount})
	if err := s.audit.Log(ctx, tx, wallet.UserID, "wallet_refund_recorded", "transaction", record.ID, string(data)); err != nil {
		return models.Transaction{}, err
	}
	return record, nil
}

func (s *WalletService) Balance(ctx context.Context, userID string) (models.Wallet, error) {
	return s.wallets.GetByUser(ctx, userID)
}

func (s *WalletService) CanOperate(ctx context.Context, userID string) (bool, error) {
	wallet, err := s.wallets.GetByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return wallet.Balance >= s.platformFee, nil
}

func (s *WalletService) Transactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	wallet, err := s.wallets.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.transactions.ListByWallet(ctx, wallet.ID, limit, offset)
}

func (s *WalletService) publishForWallet(ctx context.Context, walletID string, event events.Event) {
	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return
	}
	s.publisher.Publish([]string{wallet.UserID}, event)
}
