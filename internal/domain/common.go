package domain

import "strings"

// TradeStatus represents the lifecycle status of a tracked trade.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "open"
	StatusClosed TradeStatus = "closed"
)

// ParseTradeStatus converts a raw status string to a TradeStatus.
// The second return value is false for anything other than open or closed.
func ParseTradeStatus(s string) (TradeStatus, bool) {
	switch TradeStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOpen:
		return StatusOpen, true
	case StatusClosed:
		return StatusClosed, true
	default:
		return "", false
	}
}

// CloseReason indicates why a trade was closed.
type CloseReason string

const (
	CloseReasonStopTrigger CloseReason = "STOP_TRIGGER" // Stop predicate fired during a monitor pass
	CloseReasonExpired     CloseReason = "EXPIRED"      // Contract expiration hour reached
	CloseReasonManual      CloseReason = "MANUAL"       // Closed through the API
)
