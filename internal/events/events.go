package events

import "time"

const (
	MatchAccepted   = "match_accepted"
	MatchRejected   = "match_rejected"
	MatchCancelled  = "match_cancelled"
	MatchCompleted  = "match_completed"
	WalletCharged   = "wallet_charged"
	WalletToppedUp  = "wallet_topped_up"
	DisputeOpened   = "dispute_opened"
	DisputeResolved = "dispute_resolved"
	DisputeClosed   = "dispute_closed"
)

type Event struct {
	Type       string    `json:"type"`
	MatchID    string    `json:"match_id,omitempty"`
	DisputeID  string    `json:"dispute_id,omitempty"`
	WalletID   string    `json:"wallet_id,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	Currency   string    `json:"currency,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(userIDs []string, event Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish([]string, Event) {}
