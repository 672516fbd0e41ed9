package services

import (
	"context"

	"github.com/shopspring/decimal"
)

type PriceQuote struct {
	PricePerPerson int64
	TotalPrice     int64
	Discount       decimal.Decimal
}

type Pricer interface {
	GroupPrice(ctx context.Context, experienceID string, participants int) (PriceQuote, error)
}

type TieredPricer struct {
	basePriceMinor int64
}

func NewTieredPricer(basePriceMinor int64) TieredPricer {
	return TieredPricer{basePriceMinor: basePriceMinor}
}

func (p TieredPricer) GroupPrice(_ context.Context, _ string, participants int) (PriceQuote, error) {
	if participants <= 0 {
		return PriceQuote{}, ErrInvalidAmount
	}
	discount := decimal.Zero
	switch {
	case participants >= 6:
		discount = decimal.NewFromInt(15)
	case participants >= 3:
		discount = decimal.NewFromInt(10)
	}
	gross := decimal.NewFromInt(p.basePriceMinor).Mul(decimal.NewFromInt(int64(participants)))
	factor := decimal.NewFromInt(100).Sub(discount).Div(decimal.NewFromInt(100))
	total := gross.Mul(factor).RoundBank(0).IntPart()
	return PriceQuote{
		PricePerPerson: p.basePriceMinor,
		TotalPrice:     total,
		Discount:       discount,
	}, nil
}
