package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single immutable price observation for one coin.
type PricePoint struct {
	ID         int64           `json:"id"`
	ObservedAt time.Time       `json:"observedAt"`
	Coin       string          `json:"coin"`
	Price      decimal.Decimal `json:"price"`
}
