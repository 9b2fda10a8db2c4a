package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shehriyar31/pp-Live/internal/models"
	"github.com/Shehriyar31/pp-Live/internal/rewards"
)

func TestDailyCounter(t *testing.T) {
	noon := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("fresh counter starts at zero", func(t *testing.T) {
		c := DailyCounter{}
		assert.Equal(t, 0, c.Current(noon))
		assert.Equal(t, 10, c.Remaining(rewards.DailyVideoClickCap, noon))
	})

	t.Run("consume increments within the same day", func(t *testing.T) {
		c := DailyCounter{}
		var err error
		for i := 1; i <= rewards.DailyVideoClickCap; i++ {
			c, err = c.Consume(rewards.DailyVideoClickCap, noon)
			assert.NoError(t, err)
			assert.Equal(t, i, c.Current(noon))
		}

		_, err = c.Consume(rewards.DailyVideoClickCap, noon)
		assert.ErrorIs(t, err, models.ErrAlreadyActedToday)
		assert.Equal(t, 0, c.Remaining(rewards.DailyVideoClickCap, noon))
	})

	t.Run("calendar day boundary resets, not 24h elapsed", func(t *testing.T) {
		lateNight := time.Date(2026, 8, 30, 23, 50, 0, 0, time.UTC)
		c := DailyCounter{Count: 10, LastDate: &lateNight}

		// Ten minutes later it is a new calendar day.
		justAfterMidnight := time.Date(2026, 8, 31, 0, 0, 1, 0, time.UTC)
		assert.Equal(t, 0, c.Current(justAfterMidnight))

		c, err := c.Consume(rewards.DailyVideoClickCap, justAfterMidnight)
		assert.NoError(t, err)
		assert.Equal(t, 1, c.Current(justAfterMidnight))
	})

	t.Run("same day keeps the count even 23h later", func(t *testing.T) {
		morning := time.Date(2026, 8, 30, 0, 30, 0, 0, time.UTC)
		c := DailyCounter{Count: 10, LastDate: &morning}

		evening := time.Date(2026, 8, 30, 23, 30, 0, 0, time.UTC)
		_, err := c.Consume(rewards.DailyVideoClickCap, evening)
		assert.ErrorIs(t, err, models.ErrAlreadyActedToday)
	})
}

func TestSpinGate(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("never spun", func(t *testing.T) {
		assert.True(t, SpinAllowed(nil, now, rewards.SpinCooldown))
		assert.True(t, NextSpinTime(nil, now, rewards.SpinCooldown).IsZero())
	})

	t.Run("rolling 24h, not calendar day", func(t *testing.T) {
		lastSpin := now.Add(-23 * time.Hour)
		assert.False(t, SpinAllowed(&lastSpin, now, rewards.SpinCooldown))
		assert.Equal(t, lastSpin.Add(24*time.Hour), NextSpinTime(&lastSpin, now, rewards.SpinCooldown))

		lastSpin = now.Add(-24 * time.Hour)
		assert.True(t, SpinAllowed(&lastSpin, now, rewards.SpinCooldown))
	})
}
