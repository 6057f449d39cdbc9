package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/coinrec/coinrec-backend/internal/models"
	"github.com/coinrec/coinrec-backend/internal/registry"
	"github.com/shopspring/decimal"
)

// Ingestion failures abort startup. ErrImport marks source
// enumeration problems, ErrParse marks record-level problems.
var (
	ErrImport = errors.New("csv import failed")
	ErrParse  = errors.New("csv parsing failed")
)

// PriceWriter abstracts the persistence side of ingestion so the
// loader can be tested without a real database.
type PriceWriter interface {
	InsertBatch(ctx context.Context, points []models.PricePoint) (int64, error)
}

// Loader reads every *.csv file in a directory, registers the coin
// symbols it finds, and bulk-inserts the observations. It runs once,
// before the API starts serving.
type Loader struct {
	prices PriceWriter
	coins  *registry.CoinRegistry
	dir    string
}

func NewLoader(prices PriceWriter, coins *registry.CoinRegistry, dir string) *Loader {
	return &Loader{prices: prices, coins: coins, dir: dir}
}

// Run ingests all price files. Every file is parsed before any row
// is inserted, so a parse failure aborts with nothing written. There
// is no resume: a failed insert leaves already-copied rows in place.
func (l *Loader) Run(ctx context.Context) error {
	points, err := l.LoadAll()
	if err != nil {
		return err
	}

	for _, p := range points {
		if !l.coins.Contains(p.Coin) {
			l.coins.Add(p.Coin)
		}
	}

	n, err := l.prices.InsertBatch(ctx, points)
	if err != nil {
		return fmt.Errorf("insert prices: %w", err)
	}
	fmt.Printf("[INGEST] Loaded %d observations, %d coins\n", n, l.coins.Len())
	return nil
}

// LoadAll parses every *.csv file in the prices directory.
func (l *Loader) LoadAll() ([]models.PricePoint, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read directory %s: %v", ErrImport, l.dir, err)
	}

	var points []models.PricePoint
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		filePoints, err := l.loadFile(filepath.Join(l.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		points = append(points, filePoints...)
	}
	return points, nil
}

// loadFile parses one CSV file with the fixed schema
// timestamp,symbol,price (epoch milliseconds, coin symbol, decimal).
func (l *Loader) loadFile(path string) ([]models.PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrImport, path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: missing header: %v", ErrParse, path, err)
	}
	if header[0] != "timestamp" || header[1] != "symbol" || header[2] != "price" {
		return nil, fmt.Errorf("%w: %s: unexpected header %v, want [timestamp symbol price]",
			ErrParse, path, header)
	}

	var points []models.PricePoint
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
		}

		p, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
		}
		points = append(points, p)
	}
	return points, nil
}

func parseRecord(record []string) (models.PricePoint, error) {
	millis, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return models.PricePoint{}, fmt.Errorf("timestamp %q: %v", record[0], err)
	}

	price, err := decimal.NewFromString(record[2])
	if err != nil {
		return models.PricePoint{}, fmt.Errorf("price %q: %v", record[2], err)
	}

	return models.PricePoint{
		ObservedAt: time.UnixMilli(millis).UTC(),
		Coin:       record[1],
		Price:      price,
	}, nil
}
