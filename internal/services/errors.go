package services

import "errors"

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrUnauthorized        = errors.New("actor not party to this operation")
	ErrPaymentNotReady     = errors.New("payment not authorized yet")
	ErrAlreadyResolved     = errors.New("dispute already resolved")
	ErrDisputeNotAllowed   = errors.New("dispute not allowed for this match")
	ErrInvalidOutcome      = errors.New("invalid dispute outcome")
	ErrTopUpNotFound       = errors.New("no top-up recorded for reference")
)
