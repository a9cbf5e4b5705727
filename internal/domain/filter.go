package domain

import "time"

// FilterKind selects which trades a listing returns.
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterOpen
	FilterClosed
	FilterClosedWithin
)

// String returns the string representation of the FilterKind.
func (k FilterKind) String() string {
	switch k {
	case FilterAll:
		return "all"
	case FilterOpen:
		return "open"
	case FilterClosed:
		return "closed"
	case FilterClosedWithin:
		return "closed-within"
	default:
		return "unknown"
	}
}

// TradeFilter describes a trade listing query.
type TradeFilter struct {
	Kind   FilterKind
	Within time.Duration // Trailing window, only used by FilterClosedWithin
}

func AllTrades() TradeFilter    { return TradeFilter{Kind: FilterAll} }
func OpenTrades() TradeFilter   { return TradeFilter{Kind: FilterOpen} }
func ClosedTrades() TradeFilter { return TradeFilter{Kind: FilterClosed} }

// ClosedWithin returns closed trades whose closed_at falls in the trailing window d.
func ClosedWithin(d time.Duration) TradeFilter {
	return TradeFilter{Kind: FilterClosedWithin, Within: d}
}
