package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is the USDT value of one PRX at FetchedAt.
type Price struct {
	Value     decimal.Decimal `json:"price"`
	FetchedAt time.Time       `json:"fetched_at"`
}

func (p Price) Valid() bool {
	return p.Value.IsPositive()
}
