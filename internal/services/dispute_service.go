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

const (
	OutcomeRefund        = "refund"
	OutcomePartialRefund = "partial_refund"
	OutcomeNoRefund      = "no_refund"
)

type DisputeService struct {
	txRunner  db.TxRunner
	disputes  DisputeStore
	matches   MatchStore
	wallets   WalletStore
	ledger    *WalletService
	gateway   Gateway
	audit     AuditStore
	publisher events.Publisher
	log       *logrus.Logger
}

func NewDisputeService(txRunner db.TxRunner, disputes DisputeStore, matches MatchStore, wallets WalletStore, ledger *WalletService, gateway Gateway, audit AuditStore, publisher events.Publisher, log *logrus.Logger) *DisputeService {
	return &DisputeService{
		txRunner:  txRunner,
		disputes:  disputes,
		matches:   matches,
		wallets:   wallets,
		ledger:    ledger,
		gateway:   gateway,
		audit:     audit,
		publisher: publisher,
		log:       log,
	}
}

func (s *DisputeService) Open(ctx context.Context, matchID, openedBy, reason, description string) (models.Dispute, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return models.Dispute{}, err
	}
	if match.Status != models.MatchCompleted {
		return models.Dispute{}, ErrDisputeNotAllowed
	}
	var respondent string
	switch openedBy {
	case match.RequesterID:
		respondent = match.HostID
	case match.HostID:
		respondent = match.RequesterID
	default:
		return models.Dispute{}, ErrUnauthorized
	}
	if _, exists, err := s.disputes.GetByMatch(ctx, matchID); err != nil {
		return models.Dispute{}, err
	} else if exists {
		return models.Dispute{}, ErrDisputeNotAllowed
	}
	disputeID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.disputes.Create(ctx, tx, store.DisputeInput{
			ID:          disputeID,
			MatchID:     matchID,
			OpenedBy:    openedBy,
			Respondent:  respondent,
			Reason:      reason,
			Description: description,
			Status:      models.DisputeOpen,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"reason": reason})
		return s.audit.Log(ctx, tx, openedBy, "dispute_open", "dispute", disputeID, string(data))
	})
	if err != nil {
		return models.Dispute{}, err
	}
	s.publisher.Publish([]string{openedBy, respondent}, events.Event{
		Type:      events.DisputeOpened,
		DisputeID: disputeID,
		MatchID:   matchID,
	})
	return models.Dispute{
		ID:         disputeID,
		MatchID:    matchID,
		OpenedBy:   openedBy,
		Respondent: respondent,
		Reason:     reason,
		Status:     models.DisputeOpen,
	}, nil
}

func (s *DisputeService) Review(ctx context.Context, disputeID, adminID string) (models.Dispute, error) {
	var reviewed models.Dispute
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		dispute, err := s.disputes.GetForUpdate(ctx, tx, disputeID)
		if err != nil {
			return err
		}
		if dispute.Status != models.DisputeOpen {
			return ErrInvalidTransition
		}
		if err := s.disputes.UpdateStatus(ctx, tx, disputeID, models.DisputeUnderReview); err != nil {
			return err
		}
		dispute.Status = models.DisputeUnderReview
		reviewed = dispute
		return s.audit.Log(ctx, tx, adminID, "dispute_review", "dispute", disputeID, "{}")
	})
	if err != nil {
		return models.Dispute{}, err
	}
	return reviewed, nil
}

func (s *DisputeService) Close(ctx context.Context, disputeID, actorID string) (models.Dispute, error) {
	var closed models.Dispute
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		dispute, err := s.disputes.GetForUpdate(ctx, tx, disputeID)
		if err != nil {
			return err
		}
		if dispute.OpenedBy != actorID {
			return ErrUnauthorized
		}
		if models.DisputeIsResolved(dispute.Status) {
			return ErrAlreadyResolved
		}
		if err := s.disputes.UpdateStatus(ctx, tx, disputeID, models.DisputeClosed); err != nil {
			return err
		}
		dispute.Status = models.DisputeClosed
		closed = dispute
		return s.audit.Log(ctx, tx, actorID, "dispute_close", "dispute", disputeID, "{}")
	})
	if err != nil {
		return models.Dispute{}, err
	}
	s.publisher.Publish([]string{closed.OpenedBy, closed.Respondent}, events.Event{
		Type:      events.DisputeClosed,
		DisputeID: disputeID,
		MatchID:   closed.MatchID,
	})
	return closed, nil
}

func (s *DisputeService) Resolve(ctx context.Context, disputeID, adminID, outcome string, refundAmount int64) (models.Dispute, error) {
	var finalStatus string
	switch outcome {
	case OutcomeRefund:
		finalStatus = models.DisputeResolvedRefund
	case OutcomePartialRefund:
		finalStatus = models.DisputeResolvedPartialRefund
	case OutcomeNoRefund:
		finalStatus = models.DisputeResolvedNoRefund
		refundAmount = 0
	default:
		return models.Dispute{}, ErrInvalidOutcome
	}

	var resolved models.Dispute
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		dispute, err := s.disputes.GetForUpdate(ctx, tx, disputeID)
		if err != nil {
			return err
		}
		if models.DisputeIsResolved(dispute.Status) {
			return ErrAlreadyResolved
		}
		match, err := s.matches.GetByID(ctx, dispute.MatchID)
		if err != nil {
			return err
		}
		if refundAmount < 0 || refundAmount > match.TotalPrice {
			return ErrInvalidAmount
		}
		if outcome != OutcomeNoRefund {
			if refundAmount == 0 {
				return ErrInvalidAmount
			}
			if match.ExternalPaymentRef != nil {
				if err := s.gateway.Refund(ctx, *match.ExternalPaymentRef, refundAmount); err != nil {
					return err
				}
			}
			hostWallet, requesterWallet, err := s.lockPartyWallets(ctx, tx, match.HostID, match.RequesterID)
			if err != nil {
				return err
			}
			matchRef := match.ID
			if _, err := s.ledger.DebitInTx(ctx, tx, hostWallet.ID, refundAmount, models.TxTypeRefund, &matchRef, "Dispute clawback"); err != nil {
				return err
			}
			if _, err := s.ledger.CreditInTx(ctx, tx, requesterWallet.ID, refundAmount, models.TxTypeRefund, nil, &matchRef, "Dispute refund"); err != nil {
				return err
			}
		}
		if err := s.disputes.Resolve(ctx, tx, disputeID, finalStatus, refundAmount); err != nil {
			return err
		}
		dispute.Status = finalStatus
		dispute.RefundAmount = refundAmount
		resolved = dispute
		data, _ := json.Marshal(map[string]any{"outcome": outcome, "refund_amount": refundAmount})
		return s.audit.Log(ctx, tx, adminID, "dispute_resolve", "dispute", disputeID, string(data))
	})
	if err != nil {
		return models.Dispute{}, err
	}
	metrics.RecordDisputeResolved(outcome)
	s.publisher.Publish([]string{resolved.OpenedBy, resolved.Respondent}, events.Event{
		Type:      events.DisputeResolved,
		DisputeID: disputeID,
		MatchID:   resolved.MatchID,
		Amount:    refundAmount,
	})
	s.log.WithFields(logrus.Fields{
		"dispute_id": disputeID,
		"outcome":    outcome,
		"amount":     refundAmount,
	}).Info("dispute resolved")
	return resolved, nil
}

func (s *DisputeService) Get(ctx context.Context, disputeID string) (models.Dispute, error) {
	return s.disputes.GetByID(ctx, disputeID)
}

func (s *DisputeService) lockPartyWallets(ctx context.Context, tx *sqlx.Tx, hostID, requesterID string) (models.Wallet, models.Wallet, error) {
	firstID, secondID := hostID, requesterID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := s.wallets.GetForUpdateByUser(ctx, tx, firstID)
	if err != nil {
		return models.Wallet{}, models.Wallet{}, err
	}
	second, err := s.wallets.GetForUpdateByUser(ctx, tx, secondID)
	if err != nil {
		return models.Wallet{}, models.Wallet{}, err
	}
	if firstID == hostID {
		return first, second, nil
	}
	return second, first, nil
}
