// Command expirycheck reports whether a contract label is expired at a
// given instant, using the same rule as the trade monitor.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"optionTracker/internal/domain"
)

var (
	contract = flag.String("contract", "", "contract label, e.g. \"BTC 2pm\"")
	at       = flag.String("at", "", "instant to evaluate (RFC3339); defaults to now")
)

func main() {
	flag.Parse()

	now := domain.NowEastern()
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -at value: %v\n", err)
			os.Exit(2)
		}
		now = t.In(domain.Eastern)
	}

	expiration, ok := domain.ExpirationTime(*contract, now)
	if !ok {
		fmt.Printf("contract %q has no expiration marker; it never expires\n", *contract)
		return
	}
	fmt.Printf("now:        %s\n", now.Format(time.RFC3339))
	fmt.Printf("expiration: %s\n", expiration.Format(time.RFC3339))
	fmt.Printf("expired:    %t\n", domain.IsExpired(*contract, now))
}
