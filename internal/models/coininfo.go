package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoinInfo summarizes the full price history of one coin:
// max/min price and the timestamps of the oldest/newest observations.
// Computed per request, never stored.
type CoinInfo struct {
	Coin   string          `json:"coin"`
	Max    decimal.Decimal `json:"max"`
	Min    decimal.Decimal `json:"min"`
	Oldest time.Time       `json:"oldest"`
	Newest time.Time       `json:"newest"`
}
