package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coinrec/coinrec-backend/internal/ingest"
	"github.com/coinrec/coinrec-backend/internal/models"
	"github.com/coinrec/coinrec-backend/internal/registry"
	"github.com/shopspring/decimal"
)

type fakeWriter struct {
	points []models.PricePoint
	err    error
}

func (f *fakeWriter) InsertBatch(ctx context.Context, points []models.PricePoint) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.points = append(f.points, points...)
	return int64(len(points)), nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestRunHappyPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "BTC_values.csv",
		"timestamp,symbol,price\n1642176000000,BTC,40000.50\n1642262400000,BTC,41000\n")
	writeFile(t, dir, "ETH_values.csv",
		"timestamp,symbol,price\n1642176000000,ETH,3000.75\n")
	writeFile(t, dir, "notes.txt", "ignored")

	writer := &fakeWriter{}
	coins := registry.New()
	loader := ingest.NewLoader(writer, coins, dir)

	if err := loader.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(writer.points) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(writer.points))
	}

	first := writer.points[0]
	if first.Coin != "BTC" {
		t.Fatalf("coin mismatch: got %s", first.Coin)
	}
	if !first.Price.Equal(decimal.RequireFromString("40000.50")) {
		t.Fatalf("price mismatch: got %s", first.Price)
	}
	want := time.UnixMilli(1642176000000).UTC()
	if !first.ObservedAt.Equal(want) {
		t.Fatalf("timestamp mismatch: got %s, want %s", first.ObservedAt, want)
	}

	if !coins.Contains("btc") || !coins.Contains("ETH") {
		t.Fatal("expected BTC and ETH to be registered")
	}
	if coins.Len() != 2 {
		t.Fatalf("expected 2 registered coins, got %d", coins.Len())
	}
}

func TestRunMissingDirectory(t *testing.T) {
	loader := ingest.NewLoader(&fakeWriter{}, registry.New(), "does-not-exist")

	err := loader.Run(context.Background())
	if !errors.Is(err, ingest.ErrImport) {
		t.Fatalf("expected ErrImport, got %v", err)
	}
}

func TestRunParseFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad header", "time,coin,value\n1642176000000,BTC,40000.50\n"},
		{"bad timestamp", "timestamp,symbol,price\nnot-a-number,BTC,40000.50\n"},
		{"bad price", "timestamp,symbol,price\n1642176000000,BTC,forty\n"},
		{"missing column", "timestamp,symbol,price\n1642176000000,BTC\n"},
		{"empty file", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "prices.csv", tc.content)

			writer := &fakeWriter{}
			loader := ingest.NewLoader(writer, registry.New(), dir)

			err := loader.Run(context.Background())
			if !errors.Is(err, ingest.ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if len(writer.points) != 0 {
				t.Fatalf("no rows should be written on parse failure, got %d", len(writer.points))
			}
		})
	}
}

func TestRunAbortsBeforeInsertOnLaterFileFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "timestamp,symbol,price\n1642176000000,BTC,40000.50\n")
	writeFile(t, dir, "b.csv", "timestamp,symbol,price\nbroken,ETH,3000\n")

	writer := &fakeWriter{}
	loader := ingest.NewLoader(writer, registry.New(), dir)

	err := loader.Run(context.Background())
	if !errors.Is(err, ingest.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if len(writer.points) != 0 {
		t.Fatalf("all files parse before any insert; got %d rows written", len(writer.points))
	}
}

func TestRunInsertFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "timestamp,symbol,price\n1642176000000,BTC,40000.50\n")

	writer := &fakeWriter{err: errors.New("connection refused")}
	loader := ingest.NewLoader(writer, registry.New(), dir)

	if err := loader.Run(context.Background()); err == nil {
		t.Fatal("expected insert failure to propagate")
	}
}
