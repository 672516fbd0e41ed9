package models

import "time"

const (
	TxTypePayment        = "payment"
	TxTypeTopUp          = "wallet_topup"
	TxTypeCommission     = "commission"
	TxTypeReferralCredit = "referral_credit"
	TxTypeRefund         = "refund"
)

const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
	TxStatusRefunded  = "refunded"
)

const (
	MatchPending   = "pending"
	MatchAccepted  = "accepted"
	MatchRejected  = "rejected"
	MatchCancelled = "cancelled"
	MatchCompleted = "completed"
)

const (
	DisputeOpen                  = "open"
	DisputeUnderReview           = "under_review"
	DisputeResolvedRefund        = "resolved_refund"
	DisputeResolvedPartialRefund = "resolved_partial_refund"
	DisputeResolvedNoRefund      = "resolved_no_refund"
	DisputeClosed                = "closed"
)

const (
	IntentContextMatch = "match"
	IntentContextTopUp = "topup"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Wallet struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	Currency  string    `db:"currency" json:"currency"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Transaction struct {
	ID             string    `db:"id" json:"id"`
	WalletID       string    `db:"wallet_id" json:"wallet_id"`
	Type           string    `db:"type" json:"type"`
	Status         string    `db:"status" json:"status"`
	Amount         int64     `db:"amount" json:"amount"`
	Currency       string    `db:"currency" json:"currency"`
	ExternalRef    *string   `db:"external_ref" json:"external_ref,omitempty"`
	RelatedMatchID *string   `db:"related_match_id" json:"related_match_id,omitempty"`
	Description    string    `db:"description" json:"description"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type Match struct {
	ID                 string    `db:"id" json:"id"`
	ExperienceID       string    `db:"experience_id" json:"experience_id"`
	RequesterID        string    `db:"requester_id" json:"requester_id"`
	HostID             string    `db:"host_id" json:"host_id"`
	Status             string    `db:"status" json:"status"`
	Participants       int       `db:"participants" json:"participants"`
	TotalPrice         int64     `db:"total_price" json:"total_price"`
	ExternalPaymentRef *string   `db:"external_payment_ref" json:"external_payment_ref,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

type Dispute struct {
	ID           string     `db:"id" json:"id"`
	MatchID      string     `db:"match_id" json:"match_id"`
	OpenedBy     string     `db:"opened_by" json:"opened_by"`
	Respondent   string     `db:"respondent" json:"respondent"`
	Reason       string     `db:"reason" json:"reason"`
	Description  string     `db:"description" json:"description"`
	Status       string     `db:"status" json:"status"`
	RefundAmount int64      `db:"refund_amount" json:"refund_amount"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt   *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

type PaymentIntent struct {
	ExternalRef string    `db:"external_ref" json:"external_ref"`
	Context     string    `db:"context" json:"context"`
	Provider    string    `db:"provider" json:"provider"`
	Status      string    `db:"status" json:"status"`
	Amount      int64     `db:"amount" json:"amount"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func MatchTerminal(status string) bool {
	return status == MatchRejected || status == MatchCancelled || status == MatchCompleted
}

func DisputeIsResolved(status string) bool {
	switch status {
	case DisputeResolvedRefund, DisputeResolvedPartialRefund, DisputeResolvedNoRefund, DisputeClosed:
		return true
	}
	return false
}
