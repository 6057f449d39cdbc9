package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coinrec/coinrec-backend/internal/models"
)

// CoinInfoSource is the read side the coin routes delegate to,
// abstracted so handlers can be tested without a real database.
type CoinInfoSource interface {
	GetInfo(ctx context.Context, coin string) (*models.CoinInfo, error)
	RankByNormalizedRange(ctx context.Context) ([]string, error)
	MaxNormalizedRangeOn(ctx context.Context, day time.Time) (string, error)
}

func (s *Server) handleCoinInfo(w http.ResponseWriter, r *http.Request) {
	coin := r.PathValue("coin")
	if !s.coins.Contains(coin) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("This coin: %s doesn't supported!", coin))
		return
	}

	info, err := s.info.GetInfo(r.Context(), coin)
	if err != nil {
		fmt.Printf("Error fetching info for %s: %v\n", coin, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch coin info")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleCoinRange(w http.ResponseWriter, r *http.Request) {
	coins, err := s.info.RankByNormalizedRange(r.Context())
	if err != nil {
		fmt.Printf("Error fetching coin ranking: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch coin ranking")
		return
	}
	if coins == nil {
		coins = []string{}
	}
	writeJSON(w, http.StatusOK, coins)
}

func (s *Server) handleCoinMaxForDate(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	// A malformed date is a general failure, not a client validation
	// error: this endpoint only distinguishes 429 and 500.
	if !validateDate(date) {
		writeError(w, http.StatusInternalServerError, "invalid date format, expected dd-mm-yyyy")
		return
	}
	day, _ := time.Parse("02-01-2006", date)

	coin, err := s.info.MaxNormalizedRangeOn(r.Context(), day)
	if err != nil {
		fmt.Printf("Error fetching max range coin for %s: %v\n", date, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch most volatile coin")
		return
	}
	writeJSON(w, http.StatusOK, coin)
}
