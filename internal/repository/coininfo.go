package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coinrec/coinrec-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNoPrices is returned when a query finds no observations for the
// requested coin or date.
var ErrNoPrices = errors.New("no price data")

// The normalized range (max-min)/min is computed inside Postgres on
// NUMERIC values, so the ordering is decimal-exact. A zero minimum
// price makes the division fail with a database error instead of
// producing infinity. Order among coins with equal ranges follows
// whatever the sort emits.
const (
	selectCoinInfo = `SELECT max(price), min(price), min(price_date), max(price_date)
	                  FROM price WHERE coin = $1`
	selectCoinsByRange = `SELECT coin FROM price GROUP BY coin
	                      ORDER BY (max(price) - min(price)) / min(price) DESC`
	selectMaxRangeForDate = `SELECT coin FROM price WHERE to_char(price_date, 'dd-mm-yyyy') = $1
	                         GROUP BY coin
	                         ORDER BY (max(price) - min(price)) / min(price) DESC LIMIT 1`
)

// CoinInfoRepo issues the three read queries the API serves:
// per-coin summary, global volatility ranking, and the top coin for
// one calendar day.
type CoinInfoRepo struct {
	pool *pgxpool.Pool
}

func NewCoinInfoRepo(pool *pgxpool.Pool) *CoinInfoRepo {
	return &CoinInfoRepo{pool: pool}
}

// GetInfo aggregates the full history of one coin: max/min price and
// oldest/newest observation time. Returns ErrNoPrices when the coin
// has no rows (the aggregates come back NULL).
func (r *CoinInfoRepo) GetInfo(ctx context.Context, coin string) (*models.CoinInfo, error) {
	var (
		maxPrice, minPrice *decimal.Decimal
		oldest, newest     *time.Time
	)
	err := r.pool.QueryRow(ctx, selectCoinInfo, coin).
		Scan(&maxPrice, &minPrice, &oldest, &newest)
	if err != nil {
		return nil, err
	}
	if maxPrice == nil || minPrice == nil || oldest == nil || newest == nil {
		return nil, fmt.Errorf("%w for coin %s", ErrNoPrices, coin)
	}

	return &models.CoinInfo{
		Coin:   coin,
		Max:    *maxPrice,
		Min:    *minPrice,
		Oldest: oldest.UTC(),
		Newest: newest.UTC(),
	}, nil
}

// RankByNormalizedRange returns every coin symbol ordered by
// (max-min)/min over its full history, most volatile first.
func (r *CoinInfoRepo) RankByNormalizedRange(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, selectCoinsByRange)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coins []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		coins = append(coins, c)
	}
	return coins, rows.Err()
}

// MaxNormalizedRangeOn returns the most volatile coin considering
// only observations on the given calendar day. Returns ErrNoPrices
// when no coin has observations on that day.
func (r *CoinInfoRepo) MaxNormalizedRangeOn(ctx context.Context, day time.Time) (string, error) {
	var coin string
	err := r.pool.QueryRow(ctx, selectMaxRangeForDate, day.Format("02-01-2006")).Scan(&coin)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return "", fmt.Errorf("%w for date %s", ErrNoPrices, day.Format("02-01-2006"))
		}
		return "", err
	}
	return coin, nil
}
