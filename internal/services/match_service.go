package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Luismi76/fiestapp-sub003/internal/db"
	"github.com/Luismi76/fiestapp-sub003/internal/events"
	"github.com/Luismi76/fiestapp-sub003/internal/metrics"
	"github.com/Luismi76/fiestapp-sub003/internal/models"
	"github.com/Luismi76/fiestapp-sub003/internal/payments"
	"github.com/Luismi76/fiestapp-sub003/internal/store"
)

type MatchService struct {
	txRunner  db.TxRunner
	matches   MatchStore
	wallets   WalletStore
	ledger    *WalletService
	gateway   Gateway
	pricer    Pricer
	audit     AuditStore
	publisher events.Publisher
	log       *logrus.Logger

	currency            string
	commissionPercent   decimal.Decimal
	cancelRefundPercent decimal.Decimal
	returnURL           string
	cancelURL           string
}

type MatchConfig struct {
	Currency            string
	CommissionPercent   decimal.Decimal
	CancelRefundPercent decimal.Decimal
	ReturnURL           string
	CancelURL           string
}

func NewMatchService(txRunner db.TxRunner, matches MatchStore, wallets WalletStore, ledger *WalletService, gateway Gateway, pricer Pricer, audit AuditStore, publisher events.Publisher, cfg MatchConfig, log *logrus.Logger) *MatchService {
	return &MatchService{
		txRunner:            txRunner,
		matches:             matches,
		wallets:             wallets,
		ledger:              ledger,
		gateway:             gateway,
		pricer:              pricer,
		audit:               audit,
		publisher:           publisher,
		log:                 log,
		currency:            cfg.Currency,
		commissionPercent:   cfg.CommissionPercent,
		cancelRefundPercent: cfg.CancelRefundPercent,
		returnURL:           cfg.ReturnURL,
		cancelURL:           cfg.CancelURL,
	}
}

type MatchRequest struct {
	RequesterID  string
	HostID       string
	ExperienceID string
	Participants int
}

type MatchCreated struct {
	Match        models.Match
	ClientSecret string
	ApprovalURL  string
}

func (s *MatchService) Request(ctx context.Context, req MatchRequest) (MatchCreated, error) {
	if req.RequesterID == req.HostID {
		return MatchCreated{}, ErrUnauthorized
	}
	quote, err := s.pricer.GroupPrice(ctx, req.ExperienceID, req.Participants)
	if err != nil {
		return MatchCreated{}, err
	}
	matchID := uuid.NewString()
	created := MatchCreated{}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.matches.Create(ctx, tx, store.MatchInput{
			ID:           matchID,
			ExperienceID: req.ExperienceID,
			RequesterID:  req.RequesterID,
			HostID:       req.HostID,
			Status:       models.MatchPending,
			Participants: req.Participants,
			TotalPrice:   quote.TotalPrice,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{
			"experience_id": req.ExperienceID,
			"participants":  req.Participants,
			"total_price":   quote.TotalPrice,
			"discount":      quote.Discount.String(),
		})
		return s.audit.Log(ctx, tx, req.RequesterID, "match_request", "match", matchID, string(data))
	})
	if err != nil {
		return MatchCreated{}, err
	}
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return MatchCreated{}, err
	}
	created.Match = match
	if quote.TotalPrice > 0 {
		intent, err := s.gateway.CreateIntent(ctx, models.IntentContextMatch, payments.CreateRequest{
			ReferenceID: matchID,
			Amount:      quote.TotalPrice,
			Currency:    s.currency,
			Hold:        true,
			ReturnURL:   s.returnURL,
			CancelURL:   s.cancelURL,
		})
		if err != nil {
			s.log.WithError(err).WithField("match_id", matchID).Warn("payment hold creation failed")
			return created, nil
		}
		if err := s.attachHold(ctx, matchID, intent.ExternalRef); err != nil {
			return MatchCreated{}, err
		}
		ref := intent.ExternalRef
		created.Match.ExternalPaymentRef = &ref
		created.ClientSecret = intent.ClientSecret
		created.ApprovalURL = intent.ApprovalURL
	}
	return created, nil
}

func (s *MatchService) Accept(ctx context.Context, matchID, actorID string) (models.Match, error) {
	if err := s.ensureHold(ctx, matchID); err != nil {
		return models.Match{}, err
	}
	match, err := s.transition(ctx, matchID, "accept", actorID, func(tx *sqlx.Tx, m models.Match) (string, error) {
		if m.HostID != actorID {
			return "", ErrUnauthorized
		}
		if m.Status != models.MatchPending {
			return "", ErrInvalidTransition
		}
		if m.TotalPrice > 0 {
			if m.ExternalPaymentRef == nil {
				return "", ErrPaymentNotReady
			}
			status, err := s.gateway.Confirm(ctx, *m.ExternalPaymentRef)
			if err != nil {
				return "", err
			}
			if status != payments.StatusAuthorized && status != payments.StatusCaptured {
				return "", ErrPaymentNotReady
			}
		}
		return models.MatchAccepted, nil
	})
	if err != nil {
		return models.Match{}, err
	}
	s.publisher.Publish([]string{match.RequesterID, match.HostID}, events.Event{
		Type:     events.MatchAccepted,
		MatchID:  match.ID,
		Amount:   match.TotalPrice,
		Currency: s.currency,
	})
	return match, nil
}

func (s *MatchService) Reject(ctx context.Context, matchID, actorID string) (models.Match, error) {
	match, err := s.transition(ctx, matchID, "reject", actorID, func(tx *sqlx.Tx, m models.Match) (string, error) {
		if m.HostID != actorID {
			return "", ErrUnauthorized
		}
		if m.Status != models.MatchPending {
			return "", ErrInvalidTransition
		}
		if m.ExternalPaymentRef != nil {
			if err := s.gateway.Void(ctx, *m.ExternalPaymentRef); err != nil {
				return "", err
			}
		}
		return models.MatchRejected, nil
	})
	if err != nil {
		return models.Match{}, err
	}
	s.publisher.Publish([]string{match.RequesterID, match.HostID}, events.Event{
		Type:    events.MatchRejected,
		MatchID: match.ID,
	})
	return match, nil
}

func (s *MatchService) Cancel(ctx context.Context, matchID, actorID string) (models.Match, error) {
	match, err := s.transition(ctx, matchID, "cancel", actorID, func(tx *sqlx.Tx, m models.Match) (string, error) {
		if m.RequesterID != actorID && m.HostID != actorID {
			return "", ErrUnauthorized
		}
		if m.Status != models.MatchPending && m.Status != models.MatchAccepted {
			return "", ErrInvalidTransition
		}
		if m.ExternalPaymentRef != nil {
			intent, found, err := s.gateway.Intent(ctx, *m.ExternalPaymentRef)
			if err != nil {
				return "", err
			}
			if found && payments.Status(intent.Status) == payments.StatusCaptured {
				refund := s.cancelRefundAmount(m.TotalPrice)
				if refund > 0 {
					if err := s.gateway.Refund(ctx, *m.ExternalPaymentRef, refund); err != nil {
						return "", err
					}
					requesterWallet, err := s.wallets.GetByUser(ctx, m.RequesterID)
					if err != nil {
						return "", err
					}
					matchRef := m.ID
					if _, err := s.ledger.RecordRefundInTx(ctx, tx, requesterWallet.ID, refund, m.ExternalPaymentRef, &matchRef, "Cancellation refund"); err != nil {
						return "", err
					}
				}
			} else {
				if err := s.gateway.Void(ctx, *m.ExternalPaymentRef); err != nil {
					return "", err
				}
			}
		}
		return models.MatchCancelled, nil
	})
	if err != nil {
		return models.Match{}, err
	}
	s.publisher.Publish([]string{match.RequesterID, match.HostID}, events.Event{
		Type:    events.MatchCancelled,
		MatchID: match.ID,
	})
	return match, nil
}

func (s *MatchService) Complete(ctx context.Context, matchID, actorID string) (models.Match, error) {
	var commission, payout int64
	match, err := s.transition(ctx, matchID, "complete", actorID, func(tx *sqlx.Tx, m models.Match) (string, error) {
		if m.HostID != actorID {
			return "", ErrUnauthorized
		}
		if m.Status != models.MatchAccepted {
			return "", ErrInvalidTransition
		}
		if m.TotalPrice > 0 {
			if m.ExternalPaymentRef == nil {
				return "", ErrPaymentNotReady
			}
			status, err := s.gateway.Capture(ctx, *m.ExternalPaymentRef)
			if err != nil {
				return "", err
			}
			commission = s.commissionAmount(m.TotalPrice)
			payout = m.TotalPrice
			hostWallet, err := s.wallets.GetForUpdateByUser(ctx, tx, m.HostID)
			if err != nil {
				return "", err
			}
			matchRef := m.ID
			switch status {
			case payments.StatusCaptured:
				if _, err := s.ledger.CreditInTx(ctx, tx, hostWallet.ID, payout, models.TxTypePayment, m.ExternalPaymentRef, &matchRef, "Match payout"); err != nil {
					return "", err
				}
				if commission > 0 {
					if _, err := s.ledger.DebitInTx(ctx, tx, hostWallet.ID, commission, models.TxTypeCommission, &matchRef, "Platform commission"); err != nil {
						return "", err
					}
				}
			case payments.StatusProcessing:
				if _, err := s.ledger.RecordPendingInTx(ctx, tx, hostWallet.ID, payout, models.TxTypePayment, m.ExternalPaymentRef, &matchRef, "Match payout"); err != nil {
					return "", err
				}
				if commission > 0 {
					if _, err := s.ledger.RecordPendingInTx(ctx, tx, hostWallet.ID, -commission, models.TxTypeCommission, m.ExternalPaymentRef, &matchRef, "Platform commission"); err != nil {
						return "", err
					}
				}
				s.log.WithFields(logrus.Fields{
					"match_id":     m.ID,
					"external_ref": *m.ExternalPaymentRef,
				}).Info("capture still processing, payout recorded as pending")
			default:
				return "", ErrPaymentNotReady
			}
		}
		return models.MatchCompleted, nil
	})
	if err != nil {
		return models.Match{}, err
	}
	s.publisher.Publish([]string{match.RequesterID, match.HostID}, events.Event{
		Type:     events.MatchCompleted,
		MatchID:  match.ID,
		Amount:   payout - commission,
		Currency: s.currency,
	})
	return match, nil
}

func (s *MatchService) SettleCapture(ctx context.Context, externalRef string) error {
	status, err := s.gateway.Confirm(ctx, externalRef)
	if err != nil {
		return err
	}
	switch status {
	case payments.StatusCaptured:
		return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			if _, _, err := s.ledger.SettleByRefInTx(ctx, tx, models.TxTypePayment, externalRef); err != nil {
				return err
			}
			_, _, err := s.ledger.SettleByRefInTx(ctx, tx, models.TxTypeCommission, externalRef)
			return err
		})
	case payments.StatusFailed, payments.StatusVoided:
		s.log.WithField("external_ref", externalRef).Warn("capture did not settle, failing pending payout rows")
		return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			if err := s.ledger.FailByRefInTx(ctx, tx, models.TxTypePayment, externalRef); err != nil {
				return err
			}
			return s.ledger.FailByRefInTx(ctx, tx, models.TxTypeCommission, externalRef)
		})
	default:
		return nil
	}
}

func (s *MatchService) Status(ctx context.Context, matchID string) (string, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return "", err
	}
	return match.Status, nil
}

func (s *MatchService) Get(ctx context.Context, matchID string) (models.Match, error) {
	return s.matches.GetByID(ctx, matchID)
}

func (s *MatchService) transition(ctx context.Context, matchID, action, actorID string, fn func(tx *sqlx.Tx, m models.Match) (string, error)) (models.Match, error) {
	var result models.Match
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		match, err := s.matches.GetForUpdate(ctx, tx, matchID)
		if err != nil {
			return err
		}
		next, err := fn(tx, match)
		if err != nil {
			return err
		}
		if err := s.matches.UpdateStatus(ctx, tx, matchID, next); err != nil {
			return err
		}
		match.Status = next
		result = match
		data, _ := json.Marshal(map[string]string{"status": next})
		return s.audit.Log(ctx, tx, actorID, "match_"+action, "match", matchID, string(data))
	})
	if err != nil {
		metrics.RecordMatchTransition(action, "error")
		if err == ErrInvalidTransition {
			s.log.WithFields(logrus.Fields{
				"match_id": matchID,
				"action":   action,
			}).Warn("transition from disallowed status, possible duplicate submission")
		}
		return models.Match{}, err
	}
	metrics.RecordMatchTransition(action, "ok")
	return result, nil
}

func (s *MatchService) commissionAmount(totalPrice int64) int64 {
	return decimal.NewFromInt(totalPrice).
		Mul(s.commissionPercent).
		Div(decimal.NewFromInt(100)).
		RoundBank(0).
		IntPart()
}

func (s *MatchService) cancelRefundAmount(totalPrice int64) int64 {
	return decimal.NewFromInt(totalPrice).
		Mul(s.cancelRefundPercent).
		Div(decimal.NewFromInt(100)).
		RoundBank(0).
		IntPart()
}

func (s *MatchService) ensureHold(ctx context.Context, matchID string) error {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if match.Status != models.MatchPending || match.TotalPrice == 0 || match.ExternalPaymentRef != nil {
		return nil
	}
	intent, err := s.gateway.CreateIntent(ctx, models.IntentContextMatch, payments.CreateRequest{
		ReferenceID: match.ID,
		Amount:      match.TotalPrice,
		Currency:    s.currency,
		Hold:        true,
		ReturnURL:   s.returnURL,
		CancelURL:   s.cancelURL,
	})
	if err != nil {
		return err
	}
	if err := s.attachHold(ctx, match.ID, intent.ExternalRef); err != nil {
		return err
	}
	return nil
}

func (s *MatchService) attachHold(ctx context.Context, matchID, externalRef string) error {
	duplicate := false
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		duplicate = false
		current, err := s.matches.GetForUpdate(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if current.ExternalPaymentRef != nil {
			duplicate = true
			return nil
		}
		return s.matches.SetExternalPaymentRef(ctx, tx, matchID, externalRef)
	})
	if err != nil {
		return err
	}
	if duplicate {
		if err := s.gateway.Void(ctx, externalRef); err != nil {
			s.log.WithError(err).WithField("external_ref", externalRef).Warn("could not void duplicate authorization")
		}
	}
	return nil
}
