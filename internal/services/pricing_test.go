package services

import (
	"context"
	"testing"
)

func TestTieredPricing(t *testing.T) {
	pricer := NewTieredPricer(2500)
	cases := []struct {
		participants int
		total        int64
		discount     string
	}{
		{1, 2500, "0"},
		{2, 5000, "0"},
		{3, 6750, "10"},
		{5, 11250, "10"},
		{6, 12750, "15"},
		{10, 21250, "15"},
	}
	for _, tc := range cases {
		quote, err := pricer.GroupPrice(context.Background(), "exp1", tc.participants)
		if err != nil {
			t.Fatalf("pricing %d participants failed: %v", tc.participants, err)
		}
		if quote.TotalPrice != tc.total {
			t.Fatalf("%d participants: expected total %d, got %d", tc.participants, tc.total, quote.TotalPrice)
		}
		if quote.Discount.String() != tc.discount {
			t.Fatalf("%d participants: expected discount %s, got %s", tc.participants, tc.discount, quote.Discount)
		}
	}
}

func TestTieredPricingRejectsNonPositiveGroup(t *testing.T) {
	pricer := NewTieredPricer(2500)
	if _, err := pricer.GroupPrice(context.Background(), "exp1", 0); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
