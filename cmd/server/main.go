package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coinrec/coinrec-backend/internal/api"
	"github.com/coinrec/coinrec-backend/internal/config"
	"github.com/coinrec/coinrec-backend/internal/db"
	"github.com/coinrec/coinrec-backend/internal/ingest"
	"github.com/coinrec/coinrec-backend/internal/ratelimit"
	"github.com/coinrec/coinrec-backend/internal/registry"
	"github.com/coinrec/coinrec-backend/internal/repository"
)

const banner = `
╔══════════════════════════════════════╗
║   Coin Recommendation Service v1.0   ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}

	if err := db.EnsureSchema(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Schema setup failed: %v\n", err)
		os.Exit(1)
	}

	// Repos and registry
	priceRepo := repository.NewPriceRepo(pool)
	infoRepo := repository.NewCoinInfoRepo(pool)
	coins := registry.New()

	// CSV ingestion runs to completion before the server accepts
	// traffic; any import or parse failure is fatal.
	fmt.Printf("[INGEST] Loading price files from %s ...\n", cfg.PricesDir)
	loader := ingest.NewLoader(priceRepo, coins, cfg.PricesDir)
	if err := loader.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "[INGEST] Failed: %v\n", err)
		os.Exit(1)
	}

	// Rate limiter with background eviction of stale counters
	limiter := ratelimit.New(cfg.RateLimitPerWindow, cfg.RateLimitWindow())
	limiter.StartSweeper(cfg.RateLimitSweepInterval())
	defer limiter.StopSweeper()

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(pool, coins, infoRepo, limiter, cfg.Port, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
