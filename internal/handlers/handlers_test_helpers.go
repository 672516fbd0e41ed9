package handlers

import (
	"context"

	"github.com/Luismi76/fiestapp-sub003/internal/config"
	"github.com/Luismi76/fiestapp-sub003/internal/events"
	"github.com/Luismi76/fiestapp-sub003/internal/models"
	"github.com/Luismi76/fiestapp-sub003/internal/payments"
	"github.com/Luismi76/fiestapp-sub003/internal/services"
)

type stubWalletService struct {
	balanceFn      func(ctx context.Context, userID string) (models.Wallet, error)
	canOperateFn   func(ctx context.Context, userID string) (bool, error)
	transactionsFn func(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
}

func (s stubWalletService) Balance(ctx context.Context, userID string) (models.Wallet, error) {
	if s.balanceFn == nil {
		return models.Wallet{}, nil
	}
	return s.balanceFn(ctx, userID)
}

func (s stubWalletService) CanOperate(ctx context.Context, userID string) (bool, error) {
	if s.canOperateFn == nil {
		return false, nil
	}
	return s.canOperateFn(ctx, userID)
}

func (s stubWalletService) Transactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	if s.transactionsFn == nil {
		return nil, nil
	}
	return s.transactionsFn(ctx, userID, limit, offset)
}

type stubTopUpService struct {
	createFn  func(ctx context.Context, userID string, amount int64) (services.TopUpIntent, error)
	confirmFn func(ctx context.Context, externalRef string) (models.Transaction, error)
}

func (s stubTopUpService) Create(ctx context.Context, userID string, amount int64) (services.TopUpIntent, error) {
	if s.createFn == nil {
		return services.TopUpIntent{}, nil
	}
	return s.createFn(ctx, userID, amount)
}

func (s stubTopUpService) Confirm(ctx context.Context, externalRef string) (models.Transaction, error) {
	if s.confirmFn == nil {
		return models.Transaction{}, nil
	}
	return s.confirmFn(ctx, externalRef)
}

type stubMatchService struct {
	requestFn       func(ctx context.Context, req services.MatchRequest) (services.MatchCreated, error)
	acceptFn        func(ctx context.Context, matchID, actorID string) (models.Match, error)
	rejectFn        func(ctx context.Context, matchID, actorID string) (models.Match, error)
	cancelFn        func(ctx context.Context, matchID, actorID string) (models.Match, error)
	completeFn      func(ctx context.Context, matchID, actorID string) (models.Match, error)
	settleCaptureFn func(ctx context.Context, externalRef string) error
	getFn           func(ctx context.Context, matchID string) (models.Match, error)
}

func (s stubMatchService) Request(ctx context.Context, req services.MatchRequest) (services.MatchCreated, error) {
	if s.requestFn == nil {
		return services.MatchCreated{}, nil
	}
	return s.requestFn(ctx, req)
}

func (s stubMatchService) Accept(ctx context.Context, matchID, actorID string) (models.Match, error) {
	if s.acceptFn == nil {
		return models.Match{}, nil
	}
	return s.acceptFn(ctx, matchID, actorID)
}

func (s stubMatchService) Reject(ctx context.Context, matchID, actorID string) (models.Match, error) {
	if s.rejectFn == nil {
		return models.Match{}, nil
	}
	return s.rejectFn(ctx, matchID, actorID)
}

func (s stubMatchService) Cancel(ctx context.Context, matchID, actorID string) (models.Match, error) {
	if s.cancelFn == nil {
		return models.Match{}, nil
	}
	return s.cancelFn(ctx, matchID, actorID)
}

func (s stubMatchService) Complete(ctx context.Context, matchID, actorID string) (models.Match, error) {
	if s.completeFn == nil {
		return models.Match{}, nil
	}
	return s.completeFn(ctx, matchID, actorID)
}

func (s stubMatchService) SettleCapture(ctx context.Context, externalRef string) error {
	if s.settleCaptureFn == nil {
		return nil
	}
	return s.settleCaptureFn(ctx, externalRef)
}

func (s stubMatchService) Get(ctx context.Context, matchID string) (models.Match, error) {
	if s.getFn == nil {
		return models.Match{}, nil
	}
	return s.getFn(ctx, matchID)
}

type stubPaymentGateway struct {
	confirmFn func(ctx context.Context, externalRef string) (payments.Status, error)
	intentFn  func(ctx context.Context, externalRef string) (models.PaymentIntent, bool, error)
}

func (s stubPaymentGateway) Confirm(ctx context.Context, externalRef string) (payments.Status, error) {
	if s.confirmFn == nil {
		return payments.StatusCaptured, nil
	}
	return s.confirmFn(ctx, externalRef)
}

func (s stubPaymentGateway) Intent(ctx context.Context, externalRef string) (models.PaymentIntent, bool, error) {
	if s.intentFn == nil {
		return models.PaymentIntent{}, false, nil
	}
	return s.intentFn(ctx, externalRef)
}

func testHandler() *Handler {
	return &Handler{
		cfg: config.Config{
			JWTSecret:        "test-secret",
			Currency:         "EUR",
			PlatformFeeMinor: 150,
			AllowedOrigins:   "*",
		},
		hub: events.NewHub(),
	}
}
