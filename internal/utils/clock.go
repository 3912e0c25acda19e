package utils

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a Clock stub for tests.
type FixedClock struct {
	FixedNow time.Time
}

func (f *FixedClock) Now() time.Time {
	return f.FixedNow
}

func (f *FixedClock) SetNow(now time.Time) {
	f.FixedNow = now
}
