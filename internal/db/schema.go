package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS price (
	id         BIGSERIAL PRIMARY KEY,
	price_date TIMESTAMPTZ NOT NULL,
	price      NUMERIC     NOT NULL,
	coin       TEXT        NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_coin ON price (coin);
`

// EnsureSchema creates the price table and its index if they do not
// exist yet. Runs once at startup, before ingestion.
func EnsureSchema(p *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := p.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
