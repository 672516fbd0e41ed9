package payments

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Luismi76/fiestapp-sub003/internal/metrics"
	"github.com/Luismi76/fiestapp-sub003/internal/models"
)

type IntentStore interface {
	Create(ctx context.Context, externalRef, intentContext, provider, status string, amount int64) error
	Get(ctx context.Context, externalRef string) (models.PaymentIntent, bool, error)
	UpdateStatus(ctx context.Context, externalRef, status string) error
}

type Adapter struct {
	provider Provider
	intents  IntentStore
	log      *logrus.Logger
}

func NewAdapter(provider Provider, intents IntentStore, log *logrus.Logger) *Adapter {
	return &Adapter{provider: provider, intents: intents, log: log}
}

func (a *Adapter) ProviderName() string { return a.provider.Name() }

func (a *Adapter) CreateIntent(ctx context.Context, intentContext string, req CreateRequest) (Intent, error) {
	intent, err := a.provider.CreateIntent(ctx, req)
	if err != nil {
		metrics.RecordProviderError(a.provider.Name(), "create")
		return Intent{}, err
	}
	if err := a.intents.Create(ctx, intent.ExternalRef, intentContext, a.provider.Name(), string(intent.Status), req.Amount); err != nil {
		return Intent{}, err
	}
	a.log.WithFields(logrus.Fields{
		"provider":     a.provider.Name(),
		"external_ref": intent.ExternalRef,
		"context":      intentContext,
	}).Info("payment intent created")
	return intent, nil
}

func (a *Adapter) Confirm(ctx context.Context, externalRef string) (Status, error) {
	record, found, err := a.intents.Get(ctx, externalRef)
	if err != nil {
		return StatusFailed, err
	}
	if found && Status(record.Status).Settled() {
		return Status(record.Status), nil
	}
	status, err := a.provider.Confirm(ctx, externalRef)
	if err != nil {
		metrics.RecordProviderError(a.provider.Name(), "confirm")
		return StatusFailed, err
	}
	if found {
		if err := a.intents.UpdateStatus(ctx, externalRef, string(status)); err != nil {
			return StatusFailed, err
		}
	}
	return status, nil
}

func (a *Adapter) Capture(ctx context.Context, externalRef string) (Status, error) {
	record, found, err := a.intents.Get(ctx, externalRef)
	if err != nil {
		return StatusFailed, err
	}
	if found && Status(record.Status) == StatusCaptured {
		return StatusCaptured, nil
	}
	status, err := a.provider.Capture(ctx, externalRef)
	if err != nil {
		metrics.RecordProviderError(a.provider.Name(), "capture")
		return StatusFailed, err
	}
	if found {
		if err := a.intents.UpdateStatus(ctx, externalRef, string(status)); err != nil {
			return StatusFailed, err
		}
	}
	return status, nil
}

func (a *Adapter) Refund(ctx context.Context, externalRef string, amount int64) error {
	if err := a.provider.Refund(ctx, externalRef, amount); err != nil {
		metrics.RecordProviderError(a.provider.Name(), "refund")
		return err
	}
	if err := a.intents.UpdateStatus(ctx, externalRef, string(StatusRefunded)); err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{
		"provider":     a.provider.Name(),
		"external_ref": externalRef,
		"amount":       amount,
	}).Info("provider refund issued")
	return nil
}

func (a *Adapter) Void(ctx context.Context, externalRef string) error {
	record, found, err := a.intents.Get(ctx, externalRef)
	if err != nil {
		return err
	}
	if found && Status(record.Status) == StatusVoided {
		return nil
	}
	if err := a.provider.Void(ctx, externalRef); err != nil {
		metrics.RecordProviderError(a.provider.Name(), "void")
		return err
	}
	return a.intents.UpdateStatus(ctx, externalRef, string(StatusVoided))
}

func (a *Adapter) Intent(ctx context.Context, externalRef string) (models.PaymentIntent, bool, error) {
	return a.intents.Get(ctx, externalRef)
}
