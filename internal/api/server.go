package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/coinrec/coinrec-backend/internal/ratelimit"
	"github.com/coinrec/coinrec-backend/internal/registry"
	"github.com/jackc/pgx/v5/pgxpool"
)

const rateLimitMessage = "Too many requests from your IP address. Please try again later."

var dateRegexp = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

type Server struct {
	pool       *pgxpool.Pool
	coins      *registry.CoinRegistry
	info       CoinInfoSource
	limiter    *ratelimit.Limiter
	httpServer *http.Server
}

func NewServer(pool *pgxpool.Pool, coins *registry.CoinRegistry, info CoinInfoSource,
	limiter *ratelimit.Limiter, port int, corsOrigin string) *Server {

	s := &Server{
		pool:    pool,
		coins:   coins,
		info:    info,
		limiter: limiter,
	}

	mux := http.NewServeMux()

	// Coin routes
	mux.HandleFunc("GET /api/v1/coin/info/{coin}", s.handleCoinInfo)
	mux.HandleFunc("GET /api/v1/coin/range", s.handleCoinRange)
	mux.HandleFunc("GET /api/v1/coin/max/{date}", s.handleCoinMaxForDate)

	// Health check
	mux.HandleFunc("GET /health", s.handleHealth)

	// Rate limiting is outermost: a rejected request never reaches a
	// handler.
	handler := s.rateLimitMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.limiter.Allow(clientIP(r)); err != nil {
			writeError(w, http.StatusTooManyRequests, rateLimitMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the host part of the request's remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// --- validation helpers ---

// validateDate checks the dd-mm-yyyy path format used by /coin/max.
func validateDate(date string) bool {
	if !dateRegexp.MatchString(date) {
		return false
	}
	_, err := time.Parse("02-01-2006", date)
	return err == nil
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
