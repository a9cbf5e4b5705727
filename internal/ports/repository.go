package ports

import (
	"context"
	"time"

	"optionTracker/internal/domain"
)

// TradeStore defines the persisted collection of trades and the only
// component allowed to mutate trade state.
// Every method is atomic with respect to concurrent callers.
type TradeStore interface {
	// Create saves a new trade and returns its assigned ID.
	// The caller supplies Price in minor units; it is stored divided by 100.
	// Status defaults to open when empty.
	Create(ctx context.Context, trade *domain.Trade) (int64, error)
	// FindByID retrieves a trade by its ID.
	// Returns ErrNotFound if no such trade exists.
	FindByID(ctx context.Context, id int64) (*domain.Trade, error)
	// List retrieves trades matching the filter.
	List(ctx context.Context, filter domain.TradeFilter) ([]*domain.Trade, error)
	// SetStatus transitions a trade's status. Closing without closedAt stamps
	// the current Eastern instant. Returns ErrNotFound for a missing ID and
	// ErrInvalidTransition when reopening a closed trade.
	SetStatus(ctx context.Context, id int64, status domain.TradeStatus, closedAt *time.Time) error
	// CloseIfOpen closes the trade at the current Eastern instant only while it
	// is still open. It reports false when the trade was already closed, leaving
	// its closed_at untouched, and returns ErrNotFound for a missing ID.
	CloseIfOpen(ctx context.Context, id int64) (bool, error)
	// Delete removes a trade permanently. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id int64) error
}
