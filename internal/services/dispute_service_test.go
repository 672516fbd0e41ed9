package services

import (
	"context"
	"testing"

	"github.com/Luismi76/fiestapp-sub003/internal/models"
	"github.com/Luismi76/fiestapp-sub003/internal/store"
)

func completedMatchStore() stubMatchStore {
	ref := "pi_hold"
	return stubMatchStore{
		getByIDFn: func(ctx context.Context, matchID string) (models.Match, error) {
			return models.Match{ID: matchID, RequesterID: "req", HostID: "host", Status: models.MatchCompleted, TotalPrice: 9000, ExternalPaymentRef: &ref}, nil
		},
	}
}

func TestOpenDisputeRequiresCompletedMatch(t *testing.T) {
	matches := stubMatchStore{
		getByIDFn: func(ctx context.Context, matchID string) (models.Match, error) {
			return models.Match{ID: matchID, RequesterID: "req", HostID: "host", Status: models.MatchAccepted}, nil
		},
	}
	svc := NewDisputeService(fakeTxRunner{}, stubDisputeStore{}, matches, stubWalletStore{}, nil, stubGateway{}, stubAuditStore{}, stubPublisher{}, testLogger())

	if _, err := svc.Open(context.Background(), "m1", "req", "no_show", ""); err != ErrDisputeNotAllowed {
		t.Fatalf("expected ErrDisputeNotAllowed, got %v", err)
	}
}

func TestOpenDisputeOnlyParticipants(t *testing.T) {
	svc := NewDisputeService(fakeTxRunner{}, stubDisputeStore{}, completedMatchStore(), stubWalletStore{}, nil, stubGateway{}, stubAuditStore{}, stubPublisher{}, testLogger())

	if _, err := svc.Open(context.Background(), "m1", "stranger", "no_show", ""); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestOpenDisputeOncePerMatch(t *testing.T) {
	disputes := stubDisputeStore{
		getByMatchFn: func(ctx context.Context, matchID string) (models.Dispute, bool, error) {
			return models.Dispute{ID: "d1", MatchID: matchID}, true, nil
		},
	}
	svc := NewDisputeService(fakeTxRunner{}, disputes, completedMatchStore(), stubWalletStore{}, nil, stubGateway{}, stubAuditStore{}, stubPublisher{}, testLogger())

	if _, err := svc.Open(context.Background(), "m1", "req", "no_show", ""); err != ErrDisputeNotAllowed {
		t.Fatalf("expected ErrDisputeNotAllowed, got %v", err)
	}
}

func TestOpenDisputeSetsRespondent(t *testing.T) {
	var created store.DisputeInput
	disputes := stubDisputeStore{
		createFn: func(ctx context.Context, tx store.Execer, input store.DisputeInput) error {
			created = input
			return nil
		},
	}
	svc := NewDisputeService(fakeTxRunner{}, disputes, completedMatchStore(), stubWalletStore{}, nil, stubGateway{}, stubAuditStore{}, stubPublisher{}, testLogger())

	got, err := svc.Open(context.Background(), "m1", "host", "damages", "broken gear")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if created.Respondent != "req" || got.Respondent != "req" {
		t.Fatalf("expected requester as respondent, got %s", created.Respondent)
	}
	if created.Status != models.DisputeOpen {
		t.Fatalf("expected open dispute, got %s", created.Status)
	}
}

type disputeFixture struct {
	svc           *DisputeService
	disputeStatus *string
	hostBalance   *int64
	reqBalance    *int64
	refunded      *int64
	rows          *[]store.TransactionInput
}

func newDisputeFixture(hostBalance int64) disputeFixture {
	status := models.DisputeOpen
	hostBal := hostBalance
	reqBal := int64(0)
	refunded := int64(0)
	var rows []store.TransactionInput

	disputes := stubDisputeStore{
		getForUpdateFn: func(ctx context.Context, tx store.Getter, disputeID string) (models.Dispute, error) {
			return models.Dispute{ID: disputeID, MatchID: "m1", OpenedBy: "req", Respondent: "host", Status: status}, nil
		},
		updateStatusFn: func(ctx context.Context, tx store.Execer, disputeID, newStatus string) error {
			status = newStatus
			return nil
		},
		resolveFn: func(ctx context.Context, tx store.Execer, disputeID, newStatus string, refundAmount int64) error {
			status = newStatus
			return nil
		},
	}
	wallets := stubWalletStore{
		getForUpdateFn: func(ctx context.Context, tx store.Getter, walletID string) (models.Wallet, error) {
			if walletID == "w_host" {
				return models.Wallet{ID: walletID, UserID: "host", Balance: hostBal, Currency: "EUR"}, nil
			}
			return models.Wallet{ID: walletID, UserID: "req", Balance: reqBal, Currency: "EUR"}, nil
		},
		getForUpdateByUserFn: func(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error) {
			if userID == "host" {
				return models.Wallet{ID: "w_host", UserID: userID, Balance: hostBal, Currency: "EUR"}, nil
			}
			return models.Wallet{ID: "w_req", UserID: userID, Balance: reqBal, Currency: "EUR"}, nil
		},
		getByIDFn: func(ctx context.Context, walletID string) (models.Wallet, error) {
			return models.Wallet{ID: walletID}, nil
		},
		updateBalanceFn: func(ctx context.Context, tx store.Execer, walletID string, balance int64) error {
			if walletID == "w_host" {
				hostBal = balance
			} else {
				reqBal = balance
			}
			return nil
		},
	}
	transactions := stubTransactionStore{
		createFn: func(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
			rows = append(rows, input)
			return nil
		},
	}
	gateway := stubGateway{
		refundFn: func(ctx context.Context, externalRef string, amount int64) error {
			refunded = amount
			return nil
		},
	}
	ledger := NewWalletService(fakeTxRunner{}, wallets, transactions, stubAuditStore{}, stubPublisher{}, 150, testLogger())
	svc := NewDisputeService(fakeTxRunner{}, disputes, completedMatchStore(), wallets, ledger, gateway, stubAuditStore{}, stubPublisher{}, testLogger())
	return disputeFixture{svc: svc, disputeStatus: &status, hostBalance: &hostBal, reqBalance: &reqBal, refunded: &refunded, rows: &rows}
}

func TestResolvePartialRefundMovesFunds(t *testing.T) {
	fx := newDisputeFixture(7650)

	got, err := fx.svc.Resolve(context.Background(), "d1", "admin", OutcomePartialRefund, 2250)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got.Status != models.DisputeResolvedPartialRefund {
		t.Fatalf("expected partial refund status, got %s", got.Status)
	}
	if *fx.refunded != 2250 {
		t.Fatalf("expected provider refund 2250, got %d", *fx.refunded)
	}
	if *fx.hostBalance != 5400 {
		t.Fatalf("expected host balance 5400 after clawback, got %d", *fx.hostBalance)
	}
	if *fx.reqBalance != 2250 {
		t.Fatalf("expected requester balance 2250, got %d", *fx.reqBalance)
	}
	for _, row := range *fx.rows {
		if row.Type != models.TxTypeRefund {
			t.Fatalf("expected refund rows only, got %s", row.Type)
		}
	}
	if len(*fx.rows) != 2 {
		t.Fatalf("expected debit and credit rows, got %d", len(*fx.rows))
	}
}

func TestResolveTwiceFails(t *testing.T) {
	fx := newDisputeFixture(9000)

	if _, err := fx.svc.Resolve(context.Background(), "d1", "admin", OutcomeNoRefund, 0); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if _, err := fx.svc.Resolve(context.Background(), "d1", "admin", OutcomeRefund, 9000); err != ErrAlreadyResolved {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if *fx.refunded != 0 {
		t.Fatal("second resolve must not reach the provider")
	}
	if *fx.hostBalance != 9000 {
		t.Fatalf("second resolve must not move funds, host balance %d", *fx.hostBalance)
	}
}

func TestResolveNoRefundMovesNothing(t *testing.T) {
	fx := newDisputeFixture(9000)

	got, err := fx.svc.Resolve(context.Background(), "d1", "admin", OutcomeNoRefund, 5000)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got.Status != models.DisputeResolvedNoRefund {
		t.Fatalf("expected no refund status, got %s", got.Status)
	}
	if got.RefundAmount != 0 {
		t.Fatalf("no_refund must zero the amount, got %d", got.RefundAmount)
	}
	if len(*fx.rows) != 0 || *fx.refunded != 0 {
		t.Fatal("no_refund must not move funds")
	}
}

func TestResolveValidatesOutcomeAndAmount(t *testing.T) {
	fx := newDisputeFixture(9000)

	if _, err := fx.svc.Resolve(context.Background(), "d1", "admin", "split_difference", 100); err != ErrInvalidOutcome {
		t.Fatalf("expected ErrInvalidOutcome, got %v", err)
	}
	if _, err := fx.svc.Resolve(context.Background(), "d1", "admin", OutcomeRefund, 0); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for zero refund, got %v", err)
	}
	if _, err := fx.svc.Resolve(context.Background(), "d1", "admin", OutcomeRefund, 10000); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount above the match total, got %v", err)
	}
}

func TestReviewMovesOpenDisputeUnderReview(t *testing.T) {
	fx := newDisputeFixture(9000)

	got, err := fx.svc.Review(context.Background(), "d1", "admin")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if got.Status != models.DisputeUnderReview || *fx.disputeStatus != models.DisputeUnderReview {
		t.Fatalf("expected under_review, got %s/%s", got.Status, *fx.disputeStatus)
	}

	if _, err := fx.svc.Review(context.Background(), "d1", "admin"); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition for a second review, got %v", err)
	}

	resolved, err := fx.svc.Resolve(context.Background(), "d1", "admin", OutcomeNoRefund, 0)
	if err != nil {
		t.Fatalf("resolve from under_review failed: %v", err)
	}
	if resolved.Status != models.DisputeResolvedNoRefund {
		t.Fatalf("expected no refund status, got %s", resolved.Status)
	}
}

func TestCloseWithdrawsDispute(t *testing.T) {
	fx := newDisputeFixture(9000)

	if _, err := fx.svc.Close(context.Background(), "d1", "host"); err != ErrUnauthorized {
		t.Fatalf("only the opener may withdraw, got %v", err)
	}

	got, err := fx.svc.Close(context.Background(), "d1", "req")
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if got.Status != models.DisputeClosed || *fx.disputeStatus != models.DisputeClosed {
		t.Fatalf("expected closed, got %s/%s", got.Status, *fx.disputeStatus)
	}

	if _, err := fx.svc.Resolve(context.Background(), "d1", "admin", OutcomeRefund, 9000); err != ErrAlreadyResolved {
		t.Fatalf("expected ErrAlreadyResolved after close, got %v", err)
	}
	if *fx.hostBalance != 9000 || *fx.refunded != 0 {
		t.Fatal("a closed dispute must not move funds")
	}
	if _, err := fx.svc.Close(context.Background(), "d1", "req"); err != ErrAlreadyResolved {
		t.Fatalf("expected ErrAlreadyResolved for a second close, got %v", err)
	}
}

func TestResolveRefundFailsOnEmptyHostWallet(t *testing.T) {
	fx := newDisputeFixture(100)

	if _, err := fx.svc.Resolve(context.Background(), "d1", "admin", OutcomeRefund, 9000); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if *fx.disputeStatus != models.DisputeOpen {
		t.Fatalf("failed resolve must leave the dispute open, got %s", *fx.disputeStatus)
	}
}
