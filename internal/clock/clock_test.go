package clock

import (
	"testing"
	"time"
)

func TestFixedAdvance(t *testing.T) {
	start := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	fixed := NewFixed(start)

	if !fixed.Now().Equal(start) {
		t.Errorf("expected %s, got %s", start, fixed.Now())
	}

	fixed.Advance(90 * time.Minute)
	if !fixed.Now().Equal(start.Add(90 * time.Minute)) {
		t.Errorf("expected %s, got %s", start.Add(90*time.Minute), fixed.Now())
	}
}

func TestAddDays(t *testing.T) {
	start := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)

	got := AddDays(start, 3)
	want := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("AddDays across month end: expected %s, got %s", want, got)
	}
}

func TestIsAfter_ComparesCalendarDays(t *testing.T) {
	morning := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 15, 22, 0, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 16, 0, 0, 1, 0, time.UTC)

	if IsAfter(evening, morning) {
		t.Error("same calendar day must not count as after")
	}
	if !IsAfter(nextDay, evening) {
		t.Error("next calendar day must count as after")
	}
}
