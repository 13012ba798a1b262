package clock

import "time"

// Clock supplies the current time. The platform stamps operation
// records through a Clock so tests can pin time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the wall clock, in UTC.
func System() Clock { return systemClock{} }

// Fixed is a manually-advanced clock for tests.
type Fixed struct {
	t time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{t: t.UTC()} }

func (f *Fixed) Now() time.Time { return f.t }

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.t = f.t.Add(d) }

// AddDays returns t shifted by the given number of calendar days.
// Negative values shift backwards.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// IsAfter reports whether a falls on a later calendar day than b.
// Two instants on the same day compare equal, not after.
func IsAfter(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}
