// Package calendar supplies the clock and business-day arithmetic used for
// task deadlines. Weekends are always skipped; the holiday set is injected
// configuration, empty by default.
package calendar

import "time"

// BusinessCalendar is the clock/business-calendar collaborator of the task
// engine. Implementations must treat Saturday and Sunday as non-business days.
type BusinessCalendar interface {
	Now() time.Time
	AddBusinessDays(t time.Time, days int) time.Time
	IsBusinessDay(t time.Time) bool
}

// Calendar is the default BusinessCalendar. A zero Calendar skips weekends
// only and uses the wall clock.
type Calendar struct {
	holidays map[string]bool
	now      func() time.Time
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithHolidays adds fixed holidays (compared by calendar date).
func WithHolidays(days ...time.Time) Option {
	return func(c *Calendar) {
		for _, d := range days {
			c.holidays[dateKey(d)] = true
		}
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Calendar) { c.now = now }
}

// New builds a Calendar.
func New(opts ...Option) *Calendar {
	c := &Calendar{
		holidays: make(map[string]bool),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the current time.
func (c *Calendar) Now() time.Time { return c.now() }

// IsBusinessDay reports whether t falls on a weekday that is not a holiday.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.holidays[dateKey(t)]
}

// AddBusinessDays advances t by the given number of business days. A Friday
// plus one business day is the following Monday. days <= 0 returns t
// unchanged.
func (c *Calendar) AddBusinessDays(t time.Time, days int) time.Time {
	for days > 0 {
		t = t.AddDate(0, 0, 1)
		if c.IsBusinessDay(t) {
			days--
		}
	}
	return t
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
