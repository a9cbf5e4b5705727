package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade represents a tracked option position.
type Trade struct {
	ID       int64           `json:"id"`       // Store-generated, immutable once assigned
	Date     string          `json:"date"`     // Caller-supplied open date, opaque
	Time     string          `json:"time"`     // Caller-supplied open time, opaque
	Strike   string          `json:"strike"`   // Opaque descriptive field
	Side     string          `json:"side"`     // Opaque descriptive field
	Price    decimal.Decimal `json:"price"`    // Major currency units once stored
	Position int64           `json:"position"` // Signed position size
	Status   TradeStatus     `json:"status"`
	ClosedAt *time.Time      `json:"closed_at"` // Non-nil iff Status == StatusClosed
	Contract *string         `json:"contract"`  // Optional contract label, drives expiration
}

// IsOpen checks if the trade status is open.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

// ContractLabel returns the contract label or an empty string when absent.
func (t *Trade) ContractLabel() string {
	if t.Contract == nil {
		return ""
	}
	return *t.Contract
}

// WellFormed reports whether status and closed_at agree.
func (t *Trade) WellFormed() bool {
	switch t.Status {
	case StatusOpen:
		return t.ClosedAt == nil
	case StatusClosed:
		return t.ClosedAt != nil
	default:
		return false
	}
}
