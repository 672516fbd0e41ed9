package payments

import (
	"context"
	"fmt"
)

type Status string

const (
	StatusAuthorized     Status = "authorized"
	StatusCaptured       Status = "captured"
	StatusProcessing     Status = "processing"
	StatusRequiresAction Status = "requires_action"
	StatusFailed         Status = "failed"
	StatusVoided         Status = "voided"
	StatusRefunded       Status = "refunded"
)

func (s Status) Settled() bool {
	switch s {
	case StatusAuthorized, StatusCaptured, StatusFailed, StatusVoided, StatusRefunded:
		return true
	}
	return false
}

type CreateRequest struct {
	ReferenceID string
	Amount      int64
	Currency    string
	Hold        bool
	ReturnURL   string
	CancelURL   string
}

type Intent struct {
	ExternalRef  string
	ClientSecret string
	ApprovalURL  string
	Status       Status
}

type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, req CreateRequest) (Intent, error)
	Confirm(ctx context.Context, externalRef string) (Status, error)
	Capture(ctx context.Context, externalRef string) (Status, error)
	Refund(ctx context.Context, externalRef string, amount int64) error
	Void(ctx context.Context, externalRef string) error
}

type ProviderError struct {
	Provider string
	Op       string
	Ref      string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider %s: %s %s: %v", e.Provider, e.Op, e.Ref, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
