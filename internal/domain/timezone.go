package domain

import (
	"time"
	_ "time/tzdata" // Embed zone data so Eastern resolves on minimal hosts
)

// ReferenceZone is the IANA name of the timezone all expiration and
// closed_at arithmetic is anchored to.
const ReferenceZone = "America/New_York"

// Eastern is the loaded reference timezone.
var Eastern = mustLoadLocation(ReferenceZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("domain: cannot load timezone " + name + ": " + err.Error())
	}
	return loc
}

// NowEastern returns the current instant in the reference timezone.
func NowEastern() time.Time {
	return time.Now().In(Eastern)
}
