package registry

import (
	"strings"
	"sync"
)

// CoinRegistry is the in-memory set of supported coin symbols.
// It is populated during CSV ingestion and consulted on every
// /coin/info request. All methods are safe for concurrent use.
type CoinRegistry struct {
	mu    sync.RWMutex
	coins map[string]struct{}
}

func New() *CoinRegistry {
	return &CoinRegistry{coins: make(map[string]struct{})}
}

// Contains reports whether a coin is supported. Matching is
// case-insensitive: symbols are normalized to uppercase.
func (r *CoinRegistry) Contains(coin string) bool {
	key := strings.ToUpper(coin)
	r.mu.RLock()
	_, ok := r.coins[key]
	r.mu.RUnlock()
	return ok
}

// Add registers a coin symbol. Adding an already-registered
// symbol (in any casing) is a no-op.
func (r *CoinRegistry) Add(coin string) {
	key := strings.ToUpper(coin)
	r.mu.Lock()
	r.coins[key] = struct{}{}
	r.mu.Unlock()
}

// Len returns the number of registered symbols.
func (r *CoinRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.coins)
}
