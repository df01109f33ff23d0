package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestAddBusinessDays_SkipsWeekend(t *testing.T) {
	c := New()
	// Monday 2026-01-05 + 5 business days = Monday 2026-01-12
	mon := date(2026, time.January, 5)
	got := c.AddBusinessDays(mon, 5)
	want := date(2026, time.January, 12)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAddBusinessDays_FridayPlusOne(t *testing.T) {
	c := New()
	fri := date(2026, time.January, 9)
	got := c.AddBusinessDays(fri, 1)
	if got.Weekday() != time.Monday {
		t.Errorf("expected Monday, got %v", got.Weekday())
	}
}

func TestAddBusinessDays_ZeroIsIdentity(t *testing.T) {
	c := New()
	d := date(2026, time.January, 7)
	if got := c.AddBusinessDays(d, 0); !got.Equal(d) {
		t.Errorf("expected %v, got %v", d, got)
	}
}

func TestAddBusinessDays_SkipsHolidays(t *testing.T) {
	// New Year's Day 2026 falls on Thursday.
	nyd := date(2026, time.January, 1)
	c := New(WithHolidays(nyd))
	// Wednesday 2025-12-31 + 1 business day skips the holiday to Friday.
	wed := date(2025, time.December, 31)
	got := c.AddBusinessDays(wed, 1)
	want := date(2026, time.January, 2)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestIsBusinessDay(t *testing.T) {
	c := New()
	if c.IsBusinessDay(date(2026, time.January, 10)) {
		t.Error("Saturday should not be a business day")
	}
	if !c.IsBusinessDay(date(2026, time.January, 12)) {
		t.Error("Monday should be a business day")
	}
}

func TestWithNow(t *testing.T) {
	fixed := date(2026, time.March, 2)
	c := New(WithNow(func() time.Time { return fixed }))
	if !c.Now().Equal(fixed) {
		t.Errorf("expected fixed clock, got %v", c.Now())
	}
}
