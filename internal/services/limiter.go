package services

import (
	"time"

	"github.com/Shehriyar31/pp-Live/internal/models"
)

// Two distinct daily-reset models coexist on purpose: video clicks reset
// at the server-local calendar day boundary, while the spinner uses a
// rolling 24-hour elapsed check. Unifying them would change the observable
// reward cadence.

// DailyCounter is a (count, last action date) pair evaluated lazily: the
// count is reset when the stored date falls on an earlier calendar day.
// There is no background scheduler.
type DailyCounter struct {
	Count    int
	LastDate *time.Time
}

// Current returns the counter value for "now", applying the lazy reset.
func (c DailyCounter) Current(now time.Time) int {
	if c.LastDate == nil || !sameCalendarDay(*c.LastDate, now) {
		return 0
	}
	return c.Count
}

// Remaining returns how many actions are left under cap for "now".
func (c DailyCounter) Remaining(cap int, now time.Time) int {
	remaining := cap - c.Current(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Consume attempts one action under cap. On success it returns the
// incremented counter; on failure it returns ErrAlreadyActedToday and the
// counter is unchanged.
func (c DailyCounter) Consume(cap int, now time.Time) (DailyCounter, error) {
	count := c.Current(now)
	if count >= cap {
		return c, models.ErrAlreadyActedToday
	}
	return DailyCounter{Count: count + 1, LastDate: &now}, nil
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SpinAllowed applies the rolling 24-hour spinner gate.
func SpinAllowed(lastSpin *time.Time, now time.Time, cooldown time.Duration) bool {
	return lastSpin == nil || now.Sub(*lastSpin) >= cooldown
}

// NextSpinTime returns when the gate reopens, or the zero time if a spin
// is already allowed.
func NextSpinTime(lastSpin *time.Time, now time.Time, cooldown time.Duration) time.Time {
	if SpinAllowed(lastSpin, now, cooldown) {
		return time.Time{}
	}
	return lastSpin.Add(cooldown)
}
