package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var contractExpiryPattern = regexp.MustCompile(`(?i)BTC\s+(\d{1,2})(am|pm)`)

// rollForwardGap is how far past today's expiration hour a check may run
// before the label is taken to mean tomorrow's occurrence.
const rollForwardGap = time.Hour

// ExpirationHour extracts the 24-hour expiration hour encoded in a contract
// label such as "BTC 2pm". Only the first match is used. ok is false when the
// label carries no valid hour.
func ExpirationHour(contract string) (hour int, ok bool) {
	if contract == "" {
		return 0, false
	}
	m := contractExpiryPattern.FindStringSubmatch(contract)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil || h < 1 || h > 12 {
		return 0, false
	}
	switch strings.ToLower(m[2]) {
	case "pm":
		if h != 12 {
			h += 12
		}
	case "am":
		if h == 12 {
			h = 0
		}
	}
	return h, true
}

// ExpirationTime returns the expiration instant for contract relative to now,
// in the Eastern reference timezone.
func ExpirationTime(contract string, now time.Time) (time.Time, bool) {
	hour, ok := ExpirationHour(contract)
	if !ok {
		return time.Time{}, false
	}
	now = now.In(Eastern)
	y, m, d := now.Date()
	expiration := wallHour(y, m, d, hour)
	if expiration.Before(now) && now.Sub(expiration) > rollForwardGap {
		expiration = wallHour(y, m, d+1, hour)
	}
	return expiration, true
}

// wallHour returns hour:00 Eastern on the given day. When that wall time
// falls in a spring-forward gap it resolves to the first instant after the gap.
func wallHour(y int, m time.Month, d, hour int) time.Time {
	t := time.Date(y, m, d, hour, 0, 0, 0, Eastern)
	if t.Hour() != hour {
		t = time.Date(y, m, d, hour+1, 0, 0, 0, Eastern)
	}
	return t
}

// IsExpired reports whether a trade with the given contract label has
// expired at now. Labels without a "BTC <hour><am|pm>" marker never expire.
func IsExpired(contract string, now time.Time) bool {
	expiration, ok := ExpirationTime(contract, now)
	if !ok {
		return false
	}
	return !now.Before(expiration)
}
