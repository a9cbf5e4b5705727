package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"optionTracker/internal/domain"
	"optionTracker/internal/ports"
)

// CreateTradeInput carries caller data for a new trade. Pointer fields
// distinguish "absent" from zero values.
type CreateTradeInput struct {
	Date     *string          `json:"date"`
	Time     *string          `json:"time"`
	Strike   *string          `json:"strike"`
	Side     *string          `json:"side"`
	Price    *decimal.Decimal `json:"price"` // Minor units
	Position *int64           `json:"position"`
	Status   *string          `json:"status"`
	Contract *string          `json:"contract"`
}

// UpdateStatusInput carries a manual status change.
type UpdateStatusInput struct {
	Status   *string    `json:"status"`
	ClosedAt *time.Time `json:"closed_at"`
}

// ListQuery mirrors the listing options of the trades endpoint.
type ListQuery struct {
	Status      string // "", "open" or "closed"
	RecentHours int    // With Status "closed", restricts to the trailing window
}

// TradeService validates caller input and forwards it to the TradeStore.
type TradeService struct {
	store  ports.TradeStore
	logger ports.Logger
}

// NewTradeService creates a new application service instance.
func NewTradeService(store ports.TradeStore, logger ports.Logger) (*TradeService, error) {
	if store == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for TradeService: %w", ports.ErrConfigurationError)
	}
	return &TradeService{store: store, logger: logger}, nil
}

// CreateTrade validates in and stores a new trade, returning its ID.
func (s *TradeService) CreateTrade(ctx context.Context, in CreateTradeInput) (int64, error) {
	missing := make([]string, 0)
	if in.Date == nil {
		missing = append(missing, "date")
	}
	if in.Time == nil {
		missing = append(missing, "time")
	}
	if in.Strike == nil {
		missing = append(missing, "strike")
	}
	if in.Side == nil {
		missing = append(missing, "side")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if in.Position == nil {
		missing = append(missing, "position")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return 0, fmt.Errorf("missing required trade fields: %s: %w", strings.Join(missing, ", "), ports.ErrInvalidRequest)
	}

	trade := &domain.Trade{
		Date:     *in.Date,
		Time:     *in.Time,
		Strike:   *in.Strike,
		Side:     *in.Side,
		Price:    *in.Price,
		Position: *in.Position,
		Contract: in.Contract,
	}
	if in.Status != nil {
		status, ok := domain.ParseTradeStatus(*in.Status)
		if !ok {
			return 0, fmt.Errorf("unknown trade status %q: %w", *in.Status, ports.ErrInvalidRequest)
		}
		trade.Status = status
	}

	id, err := s.store.Create(ctx, trade)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to create trade")
		return 0, err
	}
	s.logger.Info(ctx, "Trade created", map[string]interface{}{"tradeID": id, "contract": trade.ContractLabel(), "status": trade.Status})
	return id, nil
}

// GetTrade returns a single trade.
func (s *TradeService) GetTrade(ctx context.Context, id int64) (*domain.Trade, error) {
	return s.store.FindByID(ctx, id)
}

// ListTrades resolves q to a store filter and returns the matching trades.
func (s *TradeService) ListTrades(ctx context.Context, q ListQuery) ([]*domain.Trade, error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, filter)
}

func (q ListQuery) filter() (domain.TradeFilter, error) {
	if q.RecentHours < 0 {
		return domain.TradeFilter{}, fmt.Errorf("recent_hours must not be negative: %w", ports.ErrInvalidRequest)
	}
	switch strings.ToLower(strings.TrimSpace(q.Status)) {
	case "":
		return domain.AllTrades(), nil
	case string(domain.StatusOpen):
		return domain.OpenTrades(), nil
	case string(domain.StatusClosed):
		if q.RecentHours > 0 {
			return domain.ClosedWithin(time.Duration(q.RecentHours) * time.Hour), nil
		}
		return domain.ClosedTrades(), nil
	default:
		return domain.TradeFilter{}, fmt.Errorf("unknown status filter %q: %w", q.Status, ports.ErrInvalidRequest)
	}
}

// UpdateStatus applies a manual status change.
func (s *TradeService) UpdateStatus(ctx context.Context, id int64, in UpdateStatusInput) (domain.TradeStatus, error) {
	if in.Status == nil {
		return "", fmt.Errorf("missing 'status' field for update: %w", ports.ErrInvalidRequest)
	}
	status, ok := domain.ParseTradeStatus(*in.Status)
	if !ok {
		return "", fmt.Errorf("unknown trade status %q: %w", *in.Status, ports.ErrInvalidRequest)
	}
	if err := s.store.SetStatus(ctx, id, status, in.ClosedAt); err != nil {
		s.logger.Warn(ctx, "Trade status update rejected", map[string]interface{}{"tradeID": id, "status": status, "error": err.Error()})
		return "", err
	}
	fields := map[string]interface{}{"tradeID": id, "status": status}
	if status == domain.StatusClosed {
		fields["reason"] = domain.CloseReasonManual
	}
	s.logger.Info(ctx, "Trade status updated", fields)
	return status, nil
}

// DeleteTrade removes a trade. Unknown IDs are not an error.
func (s *TradeService) DeleteTrade(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error(ctx, err, "Failed to delete trade", map[string]interface{}{"tradeID": id})
		return err
	}
	s.logger.Info(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return nil
}
