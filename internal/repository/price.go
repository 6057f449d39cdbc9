package repository

import (
	"context"

	"github.com/coinrec/coinrec-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PriceRepo struct {
	pool *pgxpool.Pool
}

func NewPriceRepo(pool *pgxpool.Pool) *PriceRepo {
	return &PriceRepo{pool: pool}
}

// Insert persists a single price observation and returns it with the
// generated id.
func (r *PriceRepo) Insert(ctx context.Context, p models.PricePoint) (*models.PricePoint, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO price (price_date, price, coin)
		 VALUES ($1, $2, $3) RETURNING id`,
		p.ObservedAt, p.Price, p.Coin,
	)
	if err := row.Scan(&p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertBatch bulk-loads price observations via COPY and returns the
// number of rows written. Used by startup ingestion.
func (r *PriceRepo) InsertBatch(ctx context.Context, points []models.PricePoint) (int64, error) {
	return r.pool.CopyFrom(ctx,
		pgx.Identifier{"price"},
		[]string{"price_date", "price", "coin"},
		pgx.CopyFromSlice(len(points), func(i int) ([]any, error) {
			p := points[i]
			return []any{p.ObservedAt, p.Price, p.Coin}, nil
		}),
	)
}
